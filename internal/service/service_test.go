package service

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

func TestRepoError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   apperrors.ErrorCode
		status int
	}{
		{"not found", repository.ErrNotFound, apperrors.ErrNotFound, http.StatusNotFound},
		{"duplicate", fmt.Errorf("%w: wards_ward_number_key", repository.ErrDuplicate), apperrors.ErrConflict, http.StatusBadRequest},
		{"check constraint", fmt.Errorf("failed to update prescription: %w",
			fmt.Errorf("%w: prescriptions_check", repository.ErrConstraint)), apperrors.ErrValidation, http.StatusBadRequest},
		{"driver failure", errors.New("connection reset"), apperrors.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr, ok := apperrors.As(RepoError(tt.err, "prescription"))
			require.True(t, ok)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.status, appErr.StatusCode())
		})
	}
}

func TestRepoErrorKeepsAppErrors(t *testing.T) {
	assert.Nil(t, RepoError(nil, "ward"))

	conflict := apperrors.Conflict("no beds available")
	assert.Same(t, conflict, RepoError(conflict, "ward"))
}
