package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusAccepted))
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusCancelled))
	assert.True(t, OrderStatusAccepted.CanTransitionTo(OrderStatusPreparing))
	assert.True(t, OrderStatusPreparing.CanTransitionTo(OrderStatusCompleted))

	assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusCompleted))
	assert.False(t, OrderStatusCompleted.CanTransitionTo(OrderStatusPending))
	assert.False(t, OrderStatusCancelled.CanTransitionTo(OrderStatusAccepted))
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusAccepted, OrderStatusPreparing,
		OrderStatusCompleted, OrderStatusCancelled,
	} {
		assert.True(t, s.Valid(), s)
	}

	assert.False(t, OrderStatus("SHIPPED").Valid())
	assert.False(t, OrderStatus("").Valid())
}
