package models

// SetAdminRequest is the body of PUT /registry/admin.
type SetAdminRequest struct {
	NewAdmin string `json:"new_admin"`
}

// VerificationRequest is the body of POST /registry/verifications. Empty
// fields are legal on the wire; the registry rejects them with codes 1 and 2.
type VerificationRequest struct {
	BusinessName string `json:"business_name"`
	BusinessID   string `json:"business_id"`
}

// OKResponse is the success body of every mutation.
type OKResponse struct {
	OK bool `json:"ok"`
}

// FailureResponse carries the literal registry result code.
type FailureResponse struct {
	Err              ResultCode `json:"err"`
	Error            string     `json:"error"`
	ErrorDescription string     `json:"error_description,omitempty"`
}

type AdminResponse struct {
	Admin string `json:"admin"`
}

type StatusResponse struct {
	Renter     string `json:"renter"`
	IsVerified bool   `json:"is_verified"`
}

// DetailsResponse has a null record for renters that never requested
// verification.
type DetailsResponse struct {
	Renter string              `json:"renter"`
	Record *VerificationRecord `json:"record"`
}
