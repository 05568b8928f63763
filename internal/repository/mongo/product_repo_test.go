package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"greenmart/internal/domain"
)

func setFields(t *testing.T, p *domain.Product) map[string]any {
	t.Helper()
	pipe, err := productUpdate(p)
	require.NoError(t, err)
	require.Len(t, pipe, 1)
	require.Equal(t, "$set", pipe[0][0].Key)

	fields := map[string]any{}
	for _, e := range pipe[0][0].Value.(bson.D) {
		fields[e.Key] = e.Value
	}
	return fields
}

func TestProductUpdate(t *testing.T) {
	p := &domain.Product{
		ID:        "p1",
		Name:      "$5 apples",
		Quantity:  1,
		Status:    domain.ProductActive,
		Tags:      []string{"fruit"},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	fields := setFields(t, p)

	t.Run("leaves identity and stock alone", func(t *testing.T) {
		assert.NotContains(t, fields, "_id")
		assert.NotContains(t, fields, "quantity")
		assert.NotContains(t, fields, "createdAt")
	})

	t.Run("writes values as literals", func(t *testing.T) {
		assert.Equal(t, bson.M{"$literal": "$5 apples"}, fields["name"])
	})

	t.Run("derives status from the stored quantity", func(t *testing.T) {
		assert.Equal(t, statusExpr("$quantity", domain.ProductActive), fields["status"])
	})

	t.Run("a requested out of stock status can be lifted by stored stock", func(t *testing.T) {
		p.Status = domain.ProductOutOfStock
		status := setFields(t, p)["status"].(bson.M)["$switch"].(bson.M)
		branches := status["branches"].(bson.A)

		assert.Equal(t, bson.M{"$eq": bson.A{"$quantity", 0}}, branches[0].(bson.M)["case"])
		assert.Equal(t, domain.ProductActive, branches[1].(bson.M)["then"])
		assert.Equal(t, domain.ProductOutOfStock, status["default"])
	})
}

func TestReserveFilter(t *testing.T) {
	f := reserveFilter("p1", 3)

	assert.Equal(t, "p1", f["_id"])
	assert.Equal(t, domain.ProductActive, f["status"])
	assert.Equal(t, bson.M{"$gte": 3}, f["quantity"])
}
