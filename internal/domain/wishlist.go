package domain

import "time"

type WishlistItem struct {
	ProductID string    `json:"product" bson:"product"`
	AddedAt   time.Time `json:"addedAt" bson:"addedAt"`
}

type Wishlist struct {
	ID        string         `json:"_id" bson:"_id" gorm:"primaryKey;size:36"`
	UserID    string         `json:"user" bson:"user" gorm:"size:36;uniqueIndex"`
	Products  []WishlistItem `json:"products" bson:"products" gorm:"type:text;serializer:json"`
	CreatedAt time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

func (w *Wishlist) Contains(productID string) bool {
	for _, it := range w.Products {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

func (w *Wishlist) Remove(productID string) {
	kept := w.Products[:0]
	for _, it := range w.Products {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	w.Products = kept
}

type WishlistLine struct {
	Product *Product  `json:"product"`
	AddedAt time.Time `json:"addedAt"`
}

type WishlistView struct {
	ID        string         `json:"_id"`
	UserID    string         `json:"user"`
	Products  []WishlistLine `json:"products"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
