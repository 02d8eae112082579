package httptransport

// LoginRequest carries the login form values keyed by field name, as
// described by GET /api/fields.
type LoginRequest struct {
	Fields map[string]string `json:"fields"`
}

// CreateVerificationRequest asks the ledger to vouch for another user.
type CreateVerificationRequest struct {
	DestinationUID string `json:"destination_uid"`
}

// ReportRequest flags a verification interaction as suspicious.
type ReportRequest struct {
	VerificationID int64  `json:"verification_id"`
	Reason         string `json:"reason"`
}
