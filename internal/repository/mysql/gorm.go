package mysql

import (
	"errors"
	"fmt"

	"greenmart/internal/domain"

	"gorm.io/gorm"
)

// counter backs SequenceRepository.
type counter struct {
	Name string `gorm:"primaryKey;size:64"`
	Seq  int64  `gorm:"not null;default:0"`
}

func (counter) TableName() string { return "counters" }

// Models lists every table the MySQL stores need, for AutoMigrate.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Category{},
		&domain.Product{},
		&domain.Cart{},
		&domain.Wishlist{},
		&domain.Order{},
		&counter{},
	}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", domain.ErrDuplicate, err)
	}
	return err
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func paginate(page, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		offset := 0
		if page > 1 {
			offset = (page - 1) * limit
		}
		return db.Offset(offset).Limit(limit)
	}
}
