package structs

type VerificationStatus string

const (
	VerificationSuccess       VerificationStatus = "success"
	VerificationNotFound      VerificationStatus = "not_found"
	VerificationExpired       VerificationStatus = "expired"
	VerificationInvalidFormat VerificationStatus = "invalid_format"
	VerificationError         VerificationStatus = "error"
)

// VerificationResult is returned by email verification instead of an error.
type VerificationResult struct {
	Status  VerificationStatus `json:"status"`
	Message string             `json:"message"`
}
