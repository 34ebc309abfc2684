package model

// AuditSummary is the result of the external audit-log summarization
// service.
type AuditSummary struct {
	Summary         string `json:"summary"`
	PotentialIssues string `json:"potential_issues"`
}
