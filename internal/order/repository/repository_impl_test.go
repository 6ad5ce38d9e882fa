package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/erayastyle/ops-hub/internal/order/domain"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMaxShopifyIDExpr(t *testing.T) {
	assert.Equal(t, "COALESCE(MAX(CAST(shopify_id AS bigint)), 0)", maxShopifyIDExpr("postgres"))
	assert.Equal(t, "COALESCE(MAX(CAST(shopify_id AS bigint)), 0)", maxShopifyIDExpr("sqlite"))
	assert.Equal(t, "COALESCE(MAX(CAST(shopify_id AS SIGNED)), 0)", maxShopifyIDExpr("mysql"))
}

func TestMaxShopifyIDComparesNumerically(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&orderdomain.Order{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	r := Provide()
	ctx := context.Background()

	max, err := r.MaxShopifyID(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, max, "empty table yields zero")

	// "9" sorts above "10" as a string; the cast must compare as numbers
	for _, id := range []string{"9", "10"} {
		require.NoError(t, db.Create(&orderdomain.Order{
			ID:            node.Generate(),
			ShopifyID:     id,
			CurrentStatus: orderdomain.StatusPending,
		}).Error)
	}

	max, err = r.MaxShopifyID(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(10), max)
}
