package model

import "time"

// Roles a user record may carry.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the account record: identity, profile, and the currently valid
// token pair. PhoneNumber is the natural key for login and registration.
type User struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	FirstName   string `json:"firstName,omitempty" gorm:"size:255"`
	LastName    string `json:"lastName,omitempty" gorm:"size:255"`
	PhoneNumber string `json:"phoneNumber" gorm:"uniqueIndex;size:32;not null"`
	Email       string `json:"email,omitempty" gorm:"size:255"`
	Role        string `json:"role" gorm:"size:16;not null;default:'user'"`

	Addresses []Address `json:"addresses" gorm:"foreignKey:UserID"`
	Bids      []Bid     `json:"bids" gorm:"foreignKey:UserID"`

	// Opaque order IDs owned by other services.
	Orders []string `json:"orders,omitempty" gorm:"serializer:json;type:json"`

	// Present only when Role is admin.
	AdminDetails *AdminDetails `json:"adminDetails,omitempty" gorm:"serializer:json;type:json"`

	// AccessToken mirrors the last issued access token for audit/display.
	// It is never consulted during validation; access tokens are stateless.
	AccessToken string `json:"accessToken,omitempty" gorm:"size:512"`

	// RefreshToken is the single currently valid refresh token, empty once
	// logged out. Never exposed in JSON.
	RefreshToken string `json:"-" gorm:"size:512"`

	// IsNewUser stays true until the first profile update.
	IsNewUser bool `json:"isNewUser" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdminDetails holds seller-side metadata, stored as a JSON column.
type AdminDetails struct {
	BusinessName string   `json:"businessName,omitempty"`
	Documents    []string `json:"documents,omitempty"`
}

// ProfilePatch enumerates the profile fields a caller may update.
// Nil pointers leave the stored value untouched.
type ProfilePatch struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
}
