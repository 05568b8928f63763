package domain

import "time"

type CategoryImage struct {
	URL      string `json:"url" bson:"url" gorm:"size:512"`
	PublicID string `json:"publicId" bson:"publicId" gorm:"size:255"`
}

type Category struct {
	ID          string        `json:"_id" bson:"_id" gorm:"primaryKey;size:36"`
	Name        string        `json:"name" bson:"name" gorm:"size:120;uniqueIndex"`
	Slug        string        `json:"slug" bson:"slug" gorm:"size:140;uniqueIndex"`
	Description string        `json:"description" bson:"description" gorm:"type:text"`
	Image       CategoryImage `json:"image" bson:"image" gorm:"embedded;embeddedPrefix:image_"`
	IsActive    bool          `json:"isActive" bson:"isActive" gorm:"index"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt" bson:"updatedAt"`
}
