package models

// Product is a catalog entry as served by the backend. The client treats the
// catalog as read-only except through the admin endpoints.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name" validate:"required,min=3,max=100"`
	Slug        string   `json:"slug,omitempty"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Stock       int      `json:"stock" validate:"gte=0"`
	Category    string   `json:"category,omitempty"`
	Images      []string `json:"images,omitempty"`
	Sizes       []string `json:"sizes,omitempty"`
	Colors      []string `json:"colors,omitempty"`
}

// Sizes carried by apparel products.
var Sizes = []string{"XS", "S", "M", "L", "XL", "XXL"}

// ProductCategories known to the storefront.
var ProductCategories = []string{
	"T-Shirts",
	"Shirts",
	"Jeans",
	"Dresses",
	"Jackets",
	"Shoes",
	"Accessories",
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Category string
	Size     string
	Search   string
	Page     int
	Limit    int
}

// LineItemFromProduct builds a cart line snapshot for a product with the
// chosen variant selectors. Quantity defaults to 1 when not positive.
func LineItemFromProduct(p Product, size, color string, quantity int) CartLineItem {
	if quantity < 1 {
		quantity = 1
	}
	return CartLineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		UnitPrice: p.Price,
		Images:    p.Images,
		Stock:     p.Stock,
		Size:      size,
		Color:     color,
		Quantity:  quantity,
	}
}
