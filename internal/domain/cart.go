package domain

import "time"

type CartItem struct {
	ProductID string    `json:"product" bson:"product"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	AddedAt   time.Time `json:"addedAt" bson:"addedAt"`
}

// Cart is owned by exactly one user and created on first access.
type Cart struct {
	ID        string     `json:"_id" bson:"_id" gorm:"primaryKey;size:36"`
	UserID    string     `json:"user" bson:"user" gorm:"size:36;uniqueIndex"`
	Items     []CartItem `json:"items" bson:"items" gorm:"type:text;serializer:json"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}

func (c *Cart) IndexOf(productID string) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) Remove(productID string) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}

func (c *Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ProductID)
	}
	return ids
}

type CartLine struct {
	Product  *Product  `json:"product"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"addedAt"`
}

// CartView is a cart with its product references resolved.
type CartView struct {
	ID        string     `json:"_id"`
	UserID    string     `json:"user"`
	Items     []CartLine `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Subtotal sums the lines whose product still exists and is active.
func (v *CartView) Subtotal() float64 {
	var total float64
	for _, l := range v.Items {
		if l.Product != nil && l.Product.Status == ProductActive {
			total += l.Product.Price * float64(l.Quantity)
		}
	}
	return total
}
