package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

func TestApplyStockLedger(t *testing.T) {
	m := &Medicine{Name: "Amoxicillin", StockQuantity: 5, IsActive: true}
	now := time.Now()

	err := m.ApplyStock(StockReduce, 10, now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))
	assert.Equal(t, 5, m.StockQuantity)

	require.NoError(t, m.ApplyStock(StockAdd, 10, now))
	assert.Equal(t, 15, m.StockQuantity)
	require.NotNil(t, m.LastRestocked)

	require.NoError(t, m.ApplyStock(StockReduce, 15, now))
	assert.Equal(t, 0, m.StockQuantity)

	require.NoError(t, m.ApplyStock(StockSet, 7, now))
	assert.Equal(t, 7, m.StockQuantity)
}

func TestApplyStockValidation(t *testing.T) {
	m := &Medicine{StockQuantity: 5}
	now := time.Now()

	for _, qty := range []int{0, -3} {
		assert.True(t, errors.Is(m.ApplyStock(StockAdd, qty, now), errors.ErrValidation))
	}
	assert.True(t, errors.Is(m.ApplyStock("borrow", 1, now), errors.ErrValidation))
	assert.Equal(t, 5, m.StockQuantity)
}

func TestDispense(t *testing.T) {
	m := &Medicine{Name: "Paracetamol", StockQuantity: 3, IsActive: true}

	assert.True(t, errors.Is(m.Dispense(4, time.Now()), errors.ErrConflict))
	require.NoError(t, m.Dispense(3, time.Now()))
	assert.Zero(t, m.StockQuantity)

	m.IsActive = false
	m.StockQuantity = 10
	assert.True(t, errors.Is(m.CheckDispensable(1), errors.ErrConflict))
}

func TestLowStockAndExpiry(t *testing.T) {
	now := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	past := NewDate(now.AddDate(0, 0, -1))
	future := NewDate(now.AddDate(0, 1, 0))

	m := &Medicine{StockQuantity: 10, ReorderLevel: 10, ExpiryDate: &past}
	assert.True(t, m.IsLowStock())
	assert.True(t, m.IsExpired(now))

	m.StockQuantity = 11
	m.ExpiryDate = &future
	assert.False(t, m.IsLowStock())
	assert.False(t, m.IsExpired(now))
}
