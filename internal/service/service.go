// Package service holds helpers shared by the domain services.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

// RepoError translates repository failures into application errors.
// Errors that already carry a kind pass through unchanged.
func RepoError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound(resource)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.Conflictf("%s already exists", resource)
	case errors.Is(err, repository.ErrConstraint):
		return apperrors.Validationf("%s violates a data constraint", resource)
	default:
		return apperrors.Internal(fmt.Errorf("%s: %w", resource, err))
	}
}

// PatientScope returns the caller's own patient id when the caller is a
// patient, and nil for staff roles, who see every patient.
func PatientScope(ctx context.Context, patients repository.PatientRepository, caller model.UserRef) (*uuid.UUID, error) {
	if caller.Role != model.RolePatient {
		return nil, nil
	}
	p, err := patients.GetByUserID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Forbidden("no patient profile is linked to this account", nil)
		}
		return nil, RepoError(err, "patient")
	}
	return &p.ID, nil
}

// CheckOwner rejects a patient caller reading someone else's record
func CheckOwner(scope *uuid.UUID, patientID uuid.UUID, resource string) error {
	if scope != nil && *scope != patientID {
		return apperrors.NotFound(resource)
	}
	return nil
}
