package domain

import "time"

type ProductStatus string

const (
	ProductActive     ProductStatus = "active"
	ProductInactive   ProductStatus = "inactive"
	ProductOutOfStock ProductStatus = "out_of_stock"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductActive, ProductInactive, ProductOutOfStock:
		return true
	}
	return false
}

type Unit string

var Units = []Unit{"kg", "g", "liter", "ml", "piece", "dozen", "pack"}

func (u Unit) Valid() bool {
	for _, v := range Units {
		if u == v {
			return true
		}
	}
	return false
}

type Image struct {
	URL       string `json:"url" bson:"url"`
	PublicID  string `json:"publicId" bson:"publicId"`
	IsPrimary bool   `json:"isPrimary" bson:"isPrimary"`
}

type Product struct {
	ID             string        `json:"_id" bson:"_id" gorm:"primaryKey;size:36"`
	Name           string        `json:"name" bson:"name" gorm:"size:180;not null"`
	Slug           string        `json:"slug" bson:"slug" gorm:"size:200;uniqueIndex"`
	Description    string        `json:"description" bson:"description" gorm:"type:text"`
	Price          float64       `json:"price" bson:"price" gorm:"type:decimal(12,2);index"`
	CompareAtPrice *float64      `json:"compareAtPrice,omitempty" bson:"compareAtPrice,omitempty" gorm:"type:decimal(12,2)"`
	SKU            string        `json:"sku" bson:"sku" gorm:"size:100;uniqueIndex"`
	Quantity       int           `json:"quantity" bson:"quantity" gorm:"not null;default:0"`
	Images         []Image       `json:"images" bson:"images" gorm:"type:text;serializer:json"`
	CategoryID     string        `json:"category" bson:"category" gorm:"size:36;index"`
	Unit           Unit          `json:"unit" bson:"unit" gorm:"size:20"`
	Tags           []string      `json:"tags" bson:"tags" gorm:"type:text;serializer:json"`
	Status         ProductStatus `json:"status" bson:"status" gorm:"size:20;index"`
	Featured       bool          `json:"featured" bson:"featured" gorm:"index"`
	CreatedAt      time.Time     `json:"createdAt" bson:"createdAt" gorm:"index"`
	UpdatedAt      time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// SyncStatus derives the stock status from the quantity: an empty product is
// out_of_stock, and a restocked out_of_stock product becomes active again.
// A manual inactive status survives restocking.
func (p *Product) SyncStatus() {
	if p.Quantity == 0 {
		p.Status = ProductOutOfStock
	} else if p.Status == ProductOutOfStock && p.Quantity > 0 {
		p.Status = ProductActive
	}
}

// PrimaryImage returns the image flagged primary, else the first one.
func (p *Product) PrimaryImage() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

type ProductSort string

const (
	SortNewest    ProductSort = ""
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortNameAsc   ProductSort = "name_asc"
	SortNameDesc  ProductSort = "name_desc"
)

type ProductFilter struct {
	Status   ProductStatus
	Category string
	MinPrice *float64
	MaxPrice *float64
	Search   string
	Featured bool
	Sort     ProductSort
	Page     int
	Limit    int
}

func (f ProductFilter) Skip() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
