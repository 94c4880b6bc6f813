package ledger

import (
	"context"
	"maps"

	"renterverify/internal/registry/models"
	"renterverify/pkg/platform/sentinel"
)

// State is an in-memory Ledger: the administrator plus the renter map.
// It is not safe for concurrent use; callers serialize access.
type State struct {
	admin   models.Identity
	renters map[models.Identity]models.VerificationRecord
}

// NewState returns an empty registry administered by admin.
func NewState(admin models.Identity) *State {
	return &State{
		admin:   admin,
		renters: make(map[models.Identity]models.VerificationRecord),
	}
}

// Clone returns an independent copy. Records are values, so a shallow map
// copy is enough.
func (s *State) Clone() *State {
	return &State{
		admin:   s.admin,
		renters: maps.Clone(s.renters),
	}
}

func (s *State) Admin(_ context.Context) (models.Identity, error) {
	return s.admin, nil
}

func (s *State) PutAdmin(_ context.Context, admin models.Identity) error {
	s.admin = admin
	return nil
}

func (s *State) Record(_ context.Context, renter models.Identity) (*models.VerificationRecord, error) {
	record, ok := s.renters[renter]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &record, nil
}

func (s *State) PutRecord(_ context.Context, renter models.Identity, record models.VerificationRecord) error {
	s.renters[renter] = record
	return nil
}

// The methods below are the synchronous registry surface over an in-memory
// state. State never fails on I/O, so the only errors are registry failures.

func (s *State) SetAdmin(caller, newAdmin models.Identity) error {
	return SetAdmin(context.Background(), s, caller, newAdmin)
}

func (s *State) RequestVerification(caller models.Identity, businessName, businessID string, at models.Ordinal) error {
	return RequestVerification(context.Background(), s, caller, businessName, businessID, at)
}

func (s *State) ApproveVerification(caller, renter models.Identity, at models.Ordinal) error {
	return ApproveVerification(context.Background(), s, caller, renter, at)
}

func (s *State) RevokeVerification(caller, renter models.Identity, at models.Ordinal) error {
	return RevokeVerification(context.Background(), s, caller, renter, at)
}

func (s *State) IsVerified(renter models.Identity) bool {
	record, ok := s.renters[renter]
	return ok && record.IsVerified
}

func (s *State) VerificationDetails(renter models.Identity) *models.VerificationRecord {
	record, ok := s.renters[renter]
	if !ok {
		return nil
	}
	return &record
}
