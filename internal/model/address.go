package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address is a delivery address owned by exactly one user, identified by a
// UUID unique within that user's address list.
type Address struct {
	ID              uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID          uint      `json:"-" gorm:"index;not null"`
	Name            string    `json:"name,omitempty" gorm:"size:255"`
	Email           string    `json:"email,omitempty" gorm:"size:255"`
	PhoneNumber     string    `json:"phoneNumber,omitempty" gorm:"size:32"`
	AlternateNumber string    `json:"alternateNumber,omitempty" gorm:"size:32"`
	Lane            string    `json:"lane,omitempty" gorm:"size:255"`
	City            string    `json:"city,omitempty" gorm:"size:128"`
	State           string    `json:"state,omitempty" gorm:"size:128"`
	Country         string    `json:"country,omitempty" gorm:"size:128"`
	Pincode         string    `json:"pincode,omitempty" gorm:"size:16"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

// BeforeCreate assigns the sub-id before the record is inserted.
func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AddressPatch enumerates the address fields a caller may update.
// Nil pointers leave the stored value untouched.
type AddressPatch struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	PhoneNumber     *string `json:"phoneNumber"`
	AlternateNumber *string `json:"alternateNumber"`
	Lane            *string `json:"lane"`
	City            *string `json:"city"`
	State           *string `json:"state"`
	Country         *string `json:"country"`
	Pincode         *string `json:"pincode"`
}

// Fields returns the column/value pairs for the set fields of the patch.
func (p AddressPatch) Fields() map[string]interface{} {
	updates := map[string]interface{}{}
	set := func(column string, v *string) {
		if v != nil {
			updates[column] = *v
		}
	}
	set("name", p.Name)
	set("email", p.Email)
	set("phone_number", p.PhoneNumber)
	set("alternate_number", p.AlternateNumber)
	set("lane", p.Lane)
	set("city", p.City)
	set("state", p.State)
	set("country", p.Country)
	set("pincode", p.Pincode)
	return updates
}
