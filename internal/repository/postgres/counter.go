package postgres

import (
	"context"
	"fmt"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
)

type counterRepository struct {
	BaseRepository
}

func NewCounterRepository(base BaseRepository) repository.CounterRepository {
	return &counterRepository{base}
}

// Next increments and returns the named counter, starting at 1
func (r *counterRepository) Next(ctx context.Context, name string) (int64, error) {
	query := `
		INSERT INTO counters (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
		RETURNING value
	`
	var value int64
	if err := r.get(ctx, &value, query, name); err != nil {
		return 0, fmt.Errorf("failed to advance counter %s: %w", name, err)
	}
	return value, nil
}
