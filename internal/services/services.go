package services

import (
	"context"
	"math"
	"strings"

	zlog "github.com/rs/zerolog/log"

	"greenmart/internal/domain"
	rabbit "greenmart/internal/infra/rabbitmq"
	"greenmart/internal/repository"
)

// Page is one page of a listing plus the numbers the envelope reports.
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

func (p Page[T]) Pages() int {
	if p.Limit <= 0 {
		return 1
	}
	return int(math.Ceil(float64(p.Total) / float64(p.Limit)))
}

func normalizePage(page, limit, defLimit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// restoreStock puts the quantities of items back, one product at a time.
// A missing product is skipped and a failed increment is logged; neither
// stops the remaining items.
func restoreStock(ctx context.Context, products repository.ProductRepository, items []domain.OrderItem, ref string) {
	for _, it := range items {
		ok, err := products.AdjustStock(ctx, it.ProductID, it.Quantity)
		if err != nil {
			zlog.Error().Err(err).Str("order", ref).Str("product", it.ProductID).Int("quantity", it.Quantity).Msg("failed to restore stock")
			continue
		}
		if !ok {
			zlog.Warn().Str("order", ref).Str("product", it.ProductID).Msg("product no longer exists, stock not restored")
		}
	}
}

func publishOrderEvent(pub rabbit.PublisherInterface, routingKey string, o *domain.Order) {
	evt := domain.NewOrderEvent(o)
	if err := pub.Publish(context.Background(), routingKey, evt); err != nil {
		zlog.Error().Err(err).Str("event", routingKey).Str("order", o.OrderNumber).Msg("failed to publish event")
	}
}
