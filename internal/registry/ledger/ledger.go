// Package ledger is the verification registry state machine.
//
// Every operation takes the ledger it acts on, the caller identity and the
// current ordinal as explicit arguments. Operations either apply their whole
// effect or return an error without touching the ledger; the admin check
// always runs before any lookup.
package ledger

import (
	"context"
	"errors"

	"renterverify/internal/registry/models"
	"renterverify/pkg/platform/sentinel"
)

// Ledger is the persistent state the registry mutates: one administrator and
// a map from identity to verification record. Implementations are driven one
// operation at a time (see store.InMemory and store.PostgresStore).
type Ledger interface {
	Admin(ctx context.Context) (models.Identity, error)
	PutAdmin(ctx context.Context, admin models.Identity) error
	// Record returns sentinel.ErrNotFound when the renter never requested
	// verification.
	Record(ctx context.Context, renter models.Identity) (*models.VerificationRecord, error)
	PutRecord(ctx context.Context, renter models.Identity, record models.VerificationRecord) error
}

// SetAdmin hands administrator rights to newAdmin.
func SetAdmin(ctx context.Context, l Ledger, caller, newAdmin models.Identity) error {
	if err := requireAdmin(ctx, l, caller); err != nil {
		return err
	}
	return l.PutAdmin(ctx, newAdmin)
}

// RequestVerification records (or re-records) the caller's business claim as
// unverified. Re-declaring resets any earlier approval.
func RequestVerification(ctx context.Context, l Ledger, caller models.Identity, businessName, businessID string, at models.Ordinal) error {
	record, err := models.NewVerificationRecord(businessName, businessID, at)
	if err != nil {
		return err
	}
	return l.PutRecord(ctx, caller, record)
}

// ApproveVerification marks renter verified as of at. Admin only.
func ApproveVerification(ctx context.Context, l Ledger, caller, renter models.Identity, at models.Ordinal) error {
	return mutateRecord(ctx, l, caller, renter, func(r *models.VerificationRecord) {
		r.ApplyApproval(at)
	})
}

// RevokeVerification clears renter's verification as of at. Admin only.
func RevokeVerification(ctx context.Context, l Ledger, caller, renter models.Identity, at models.Ordinal) error {
	return mutateRecord(ctx, l, caller, renter, func(r *models.VerificationRecord) {
		r.ApplyRevocation(at)
	})
}

// IsVerified reports whether renter is currently verified. Unknown renters
// are simply not verified.
func IsVerified(ctx context.Context, l Ledger, renter models.Identity) (bool, error) {
	record, err := VerificationDetails(ctx, l, renter)
	if err != nil || record == nil {
		return false, err
	}
	return record.IsVerified, nil
}

// VerificationDetails returns renter's record, or nil when none exists.
func VerificationDetails(ctx context.Context, l Ledger, renter models.Identity) (*models.VerificationRecord, error) {
	record, err := l.Record(ctx, renter)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func requireAdmin(ctx context.Context, l Ledger, caller models.Identity) error {
	admin, err := l.Admin(ctx)
	if err != nil {
		return err
	}
	if caller != admin {
		return models.ErrNotAuthorized
	}
	return nil
}

func mutateRecord(ctx context.Context, l Ledger, caller, renter models.Identity, apply func(*models.VerificationRecord)) error {
	if err := requireAdmin(ctx, l, caller); err != nil {
		return err
	}
	record, err := l.Record(ctx, renter)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.ErrRenterNotFound
	}
	if err != nil {
		return err
	}
	updated := *record
	apply(&updated)
	return l.PutRecord(ctx, renter, updated)
}
