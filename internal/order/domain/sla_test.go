package domain

import (
	"testing"
	"time"

	"github.com/erayastyle/ops-hub/internal/config"
	"github.com/erayastyle/ops-hub/internal/shopify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSLADueAt(t *testing.T) {
	policy := config.DefaultSLAPolicy()
	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("terminal statuses carry no deadline", func(t *testing.T) {
		order := shopify.Order{CreatedAt: createdAt}
		for _, status := range []Status{StatusDelivered, StatusCancelled, StatusRefunded, StatusReturned} {
			assert.Nil(t, ComputeSLADueAt(order, status, policy), "status %s", status)
		}
	})

	t.Run("statuses without a budget carry no deadline", func(t *testing.T) {
		order := shopify.Order{CreatedAt: createdAt}
		for _, status := range []Status{StatusOnHold, StatusDisputed, StatusError} {
			assert.Nil(t, ComputeSLADueAt(order, status, policy), "status %s", status)
		}
	})

	t.Run("base budget from policy", func(t *testing.T) {
		order := shopify.Order{CreatedAt: createdAt}
		due := ComputeSLADueAt(order, StatusPending, policy)
		require.NotNil(t, due)
		assert.Equal(t, createdAt.Add(24*time.Hour), *due)
	})

	t.Run("engraving adds the surcharge", func(t *testing.T) {
		order := shopify.Order{
			CreatedAt: createdAt,
			LineItems: []shopify.LineItem{engravedItem()},
		}
		due := ComputeSLADueAt(order, StatusProcessing, policy)
		require.NotNil(t, due)
		assert.Equal(t, createdAt.Add((72+24)*time.Hour), *due)
	})
}

func TestIsSLABreached(t *testing.T) {
	policy := config.DefaultSLAPolicy()
	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	order := shopify.Order{CreatedAt: createdAt}

	// pending budget is 24h
	assert.False(t, IsSLABreached(order, StatusPending, policy, createdAt.Add(23*time.Hour)))
	assert.False(t, IsSLABreached(order, StatusPending, policy, createdAt.Add(24*time.Hour)))
	assert.True(t, IsSLABreached(order, StatusPending, policy, createdAt.Add(25*time.Hour)))

	assert.False(t, IsSLABreached(order, StatusDelivered, policy, createdAt.Add(1000*time.Hour)))
}

func TestStoredSLADueAt(t *testing.T) {
	policy := config.DefaultSLAPolicy()
	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("plain order uses the base budget", func(t *testing.T) {
		order := &Order{CreatedAt: createdAt}
		due := StoredSLADueAt(order, StatusPacked, policy)
		require.NotNil(t, due)
		assert.Equal(t, createdAt.Add(24*time.Hour), *due)
	})

	t.Run("persisted engraving flag adds the surcharge", func(t *testing.T) {
		order := &Order{
			CreatedAt: createdAt,
			LineItems: []OrderLineItem{{RequiresEngraving: true}},
		}
		due := StoredSLADueAt(order, StatusPacked, policy)
		require.NotNil(t, due)
		assert.Equal(t, createdAt.Add(48*time.Hour), *due)
	})

	t.Run("terminal returns nil", func(t *testing.T) {
		order := &Order{CreatedAt: createdAt}
		assert.Nil(t, StoredSLADueAt(order, StatusDelivered, policy))
	})
}
