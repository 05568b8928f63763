package http

import (
	"strings"
	"time"

	"greenmart/internal/domain"
	"greenmart/internal/services"
)

type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Phone     string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"accessToken"`
}

type UpdateProfileRequest struct {
	FirstName *string          `json:"firstName"`
	LastName  *string          `json:"lastName"`
	Phone     *string          `json:"phone"`
	Avatar    *string          `json:"avatar"`
	Addresses []domain.Address `json:"addresses"`
	Password  *string          `json:"password"`
}

func (r UpdateProfileRequest) input() services.ProfileInput {
	return services.ProfileInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Avatar:    r.Avatar,
		Addresses: r.Addresses,
		Password:  r.Password,
	}
}

type UpdateUserRequest struct {
	IsActive *bool        `json:"isActive"`
	Role     *domain.Role `json:"role"`
}

type ListQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
}

type CategoryRequest struct {
	Name        *string `form:"name" json:"name"`
	Description *string `form:"description" json:"description"`
	IsActive    *bool   `form:"isActive" json:"isActive"`
}

func (r CategoryRequest) input() services.CategoryInput {
	return services.CategoryInput{Name: r.Name, Description: r.Description, IsActive: r.IsActive}
}

type ProductQuery struct {
	Page     int      `form:"page"`
	Limit    int      `form:"limit"`
	Category string   `form:"category"`
	MinPrice *float64 `form:"minPrice"`
	MaxPrice *float64 `form:"maxPrice"`
	Search   string   `form:"search"`
	Featured string   `form:"featured"`
	Sort     string   `form:"sort"`
}

func (q ProductQuery) filter() domain.ProductFilter {
	return domain.ProductFilter{
		Category: q.Category,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Search:   q.Search,
		Featured: q.Featured == "true",
		Sort:     domain.ProductSort(q.Sort),
		Page:     q.Page,
		Limit:    q.Limit,
	}
}

// ProductRequest binds both multipart forms and JSON bodies. Tags may come
// as repeated fields or as one comma separated value.
type ProductRequest struct {
	Name           *string  `form:"name" json:"name"`
	Description    *string  `form:"description" json:"description"`
	Price          *float64 `form:"price" json:"price"`
	CompareAtPrice *float64 `form:"compareAtPrice" json:"compareAtPrice"`
	SKU            *string  `form:"sku" json:"sku"`
	Quantity       *int     `form:"quantity" json:"quantity"`
	Category       *string  `form:"category" json:"category"`
	Unit           *string  `form:"unit" json:"unit"`
	Tags           []string `form:"tags" json:"tags"`
	Status         *string  `form:"status" json:"status"`
	Featured       *bool    `form:"featured" json:"featured"`
}

func (r ProductRequest) input() services.ProductInput {
	var tags []string
	if r.Tags != nil {
		tags = []string{}
		for _, t := range r.Tags {
			tags = append(tags, strings.Split(t, ",")...)
		}
	}
	return services.ProductInput{
		Name:           r.Name,
		Description:    r.Description,
		Price:          r.Price,
		CompareAtPrice: r.CompareAtPrice,
		SKU:            r.SKU,
		Quantity:       r.Quantity,
		Category:       r.Category,
		Unit:           r.Unit,
		Tags:           tags,
		Status:         r.Status,
		Featured:       r.Featured,
	}
}

type StockRequest struct {
	Quantity *int `json:"quantity"`
}

type CartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CreateOrderRequest struct {
	ShippingAddress *domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                  `json:"paymentMethod"`
}

type OrderStatusRequest struct {
	Status string `json:"status"`
}

type TrackingRequest struct {
	Status            string     `json:"status"`
	Location          string     `json:"location"`
	Description       string     `json:"description"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery"`
}

type CreateIntentRequest struct {
	Amount   float64           `json:"amount"`
	Metadata map[string]string `json:"metadata"`
}

type ClientSecretResponse struct {
	ClientSecret string `json:"clientSecret"`
}
