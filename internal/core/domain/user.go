package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	ProviderLocal = "local"
)

// User is a locally registered account.
type User struct {
	ID           string    `json:"id"`
	Fullname     string    `json:"fullname"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Gender       string    `json:"gender,omitempty"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// Identity is an account linked to an external identity provider, keyed by
// (Provider, Subject).
type Identity struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	Subject   string    `json:"subject"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Picture   string    `json:"picture,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProviderProfile is what an identity provider returns after a successful
// round trip.
type ProviderProfile struct {
	Provider string
	Subject  string
	Name     string
	Email    string
	Picture  string
}

// CurrentUser is the public view of whoever holds the session.
type CurrentUser struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	Provider string `json:"provider"`
	Picture  string `json:"picture,omitempty"`
}
