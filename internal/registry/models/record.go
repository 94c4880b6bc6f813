package models

// VerificationRecord is the stored business-identity claim of one renter and
// its current trust status.
//
// Invariants:
//   - BusinessName and BusinessID are non-empty
//   - IsVerified implies VerificationDate > 0 and equals the ordinal of the
//     most recent approval
//   - LastUpdated is the ordinal of the most recent request, approval or
//     revocation
//
// Records are never deleted. Revocation clears IsVerified but keeps
// VerificationDate so the last approval stays visible.
type VerificationRecord struct {
	BusinessName     string  `json:"business_name"`
	BusinessID       string  `json:"business_id"`
	IsVerified       bool    `json:"is_verified"`
	VerificationDate Ordinal `json:"verification_date"`
	LastUpdated      Ordinal `json:"last_updated"`
}

// NewVerificationRecord builds an unverified record for a fresh (or repeated)
// verification request. The name is checked before the id.
func NewVerificationRecord(businessName, businessID string, at Ordinal) (VerificationRecord, error) {
	if businessName == "" {
		return VerificationRecord{}, ErrEmptyBusinessName
	}
	if businessID == "" {
		return VerificationRecord{}, ErrEmptyBusinessID
	}
	return VerificationRecord{
		BusinessName:     businessName,
		BusinessID:       businessID,
		IsVerified:       false,
		VerificationDate: 0,
		LastUpdated:      at,
	}, nil
}

// ApplyApproval marks the record verified as of at.
func (r *VerificationRecord) ApplyApproval(at Ordinal) {
	r.IsVerified = true
	r.VerificationDate = at
	r.LastUpdated = at
}

// ApplyRevocation clears verification as of at. VerificationDate is left as is.
func (r *VerificationRecord) ApplyRevocation(at Ordinal) {
	r.IsVerified = false
	r.LastUpdated = at
}
