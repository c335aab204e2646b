package models

// User roles as reported by the backend.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents the authenticated account as returned by the backend. The
// client never holds a password; credentials are exchanged for tokens at
// login and discarded.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserUpdate carries a partial profile update. Nil fields are left untouched
// when merged into the current user.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Name      *string
	Email     *string
	Phone     *string
}

// ApplyTo shallow-merges the update into the given user.
func (u UserUpdate) ApplyTo(user *User) {
	if u.FirstName != nil {
		user.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		user.LastName = *u.LastName
	}
	if u.Name != nil {
		user.Name = *u.Name
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.Phone != nil {
		user.Phone = *u.Phone
	}
}

// Credentials is the login form payload, validated client-side before it is
// ever sent to the network.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Registration is the sign-up form payload.
type Registration struct {
	FirstName string `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string `json:"lastName" validate:"required,min=1,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
}
