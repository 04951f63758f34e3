package enums

import "fmt"

// CandidateStatus maps to the candidate_status_enum enum in Postgres.
//
// Only the funding engine moves a candidate to hired/completed; the earlier
// stages belong to the campaign screens outside this service.
type CandidateStatus string

const (
	CandidateStatusApplied     CandidateStatus = "applied"
	CandidateStatusShortlisted CandidateStatus = "shortlisted"
	CandidateStatusHired       CandidateStatus = "hired"
	CandidateStatusCompleted   CandidateStatus = "completed"
)

var validCandidateStatuses = []CandidateStatus{
	CandidateStatusApplied,
	CandidateStatusShortlisted,
	CandidateStatusHired,
	CandidateStatusCompleted,
}

// IsValid reports whether the value matches the canonical enum.
func (s CandidateStatus) IsValid() bool {
	for _, candidate := range validCandidateStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCandidateStatus converts raw input into CandidateStatus.
func ParseCandidateStatus(value string) (CandidateStatus, error) {
	for _, candidate := range validCandidateStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid candidate status %q", value)
}
