package domain

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

type AddressType string

const (
	AddressHome  AddressType = "home"
	AddressWork  AddressType = "work"
	AddressOther AddressType = "other"
)

type Address struct {
	Type      AddressType `json:"type" bson:"type"`
	Street    string      `json:"street" bson:"street"`
	City      string      `json:"city" bson:"city"`
	ZipCode   string      `json:"zipCode" bson:"zipCode"`
	Country   string      `json:"country" bson:"country"`
	IsDefault bool        `json:"isDefault" bson:"isDefault"`
}

// User is never hard deleted; IsActive=false deactivates the account.
type User struct {
	ID        string    `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	Email     string    `json:"email" bson:"email" gorm:"size:180;uniqueIndex;not null"`
	Password  string    `json:"-" bson:"password" gorm:"size:100;not null"`
	FirstName string    `json:"firstName" bson:"firstName" gorm:"size:100"`
	LastName  string    `json:"lastName" bson:"lastName" gorm:"size:100"`
	Phone     string    `json:"phone" bson:"phone" gorm:"size:40"`
	Role      Role      `json:"role" bson:"role" gorm:"size:20;index"`
	Avatar    string    `json:"avatar,omitempty" bson:"avatar,omitempty" gorm:"size:512"`
	Addresses []Address `json:"addresses" bson:"addresses" gorm:"type:text;serializer:json"`
	IsActive  bool      `json:"isActive" bson:"isActive" gorm:"index"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

type UserFilter struct {
	Search string
	Page   int
	Limit  int
}
