package models

// LineKey identifies a line item within a cart. Two lines with the same key
// must be merged, never duplicated. Size and Color are empty strings for
// products without that variant axis.
type LineKey struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// CartLineItem is one entry in a cart. Name, UnitPrice, Images and Stock are
// a display snapshot captured when the item was added; the server remains
// authoritative for both price and stock.
type CartLineItem struct {
	ProductID string   `json:"productId" validate:"required"`
	Name      string   `json:"name"`
	Slug      string   `json:"slug,omitempty"`
	UnitPrice float64  `json:"unitPrice"`
	Images    []string `json:"images,omitempty"`
	Stock     int      `json:"stock" validate:"gte=0"`
	Size      string   `json:"size,omitempty"`
	Color     string   `json:"color,omitempty"`
	Quantity  int      `json:"quantity" validate:"gte=1"`
}

// Key returns the identity key of the line.
func (i CartLineItem) Key() LineKey {
	return LineKey{ProductID: i.ProductID, Size: i.Size, Color: i.Color}
}

// RemoteCartLine pairs a line item with the backend's own identifier for it.
// Quantity updates and removals against the server-side cart address the
// backend item ID, not the line key.
type RemoteCartLine struct {
	ItemID string
	Item   CartLineItem
}

// Pricing rules applied when summarising a cart. Orders at or above the free
// shipping threshold ship for free; tax is 18% GST.
const (
	FreeShippingThreshold = 1000.0
	FlatShippingCost      = 50.0
	TaxRate               = 0.18
)

// CartSummary holds the computed totals for a cart.
type CartSummary struct {
	Subtotal     float64 `json:"subtotal"`
	ShippingCost float64 `json:"shippingCost"`
	Tax          float64 `json:"tax"`
	Total        float64 `json:"total"`
	ItemCount    int     `json:"itemCount"`
}

// Summarize computes totals over the given line items.
func Summarize(items []CartLineItem) CartSummary {
	var subtotal float64
	var count int
	for _, item := range items {
		subtotal += item.UnitPrice * float64(item.Quantity)
		count += item.Quantity
	}

	shipping := FlatShippingCost
	if subtotal >= FreeShippingThreshold {
		shipping = 0
	}
	tax := subtotal * TaxRate

	return CartSummary{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Tax:          tax,
		Total:        subtotal + shipping + tax,
		ItemCount:    count,
	}
}
