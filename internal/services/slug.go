package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"greenmart/internal/domain"
)

type slugExists func(ctx context.Context, slug, excludeID string) (bool, error)

// uniqueSlug derives a slug from name and appends -2, -3, ... until no
// other record than excludeID uses it.
func uniqueSlug(ctx context.Context, name, excludeID string, exists slugExists) (string, error) {
	base := domain.Slugify(name)
	if base == "" {
		base = uuid.NewString()[:8]
	}
	slug := base
	for n := 2; ; n++ {
		taken, err := exists(ctx, slug, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}
