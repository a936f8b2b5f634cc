package models

// ModerationStats is the admin dashboard snapshot.
type ModerationStats struct {
	TotalSubmissions    int64            `json:"totalSubmissions"`
	SubmissionsByStatus map[string]int64 `json:"submissionsByStatus"`
	SubmissionsByKind   map[string]int64 `json:"submissionsByKind"`
	PendingReview       int64            `json:"pendingReview"`
	FlaggedRate         float64          `json:"flaggedRate"`
	RecentSubmissions   []Submission     `json:"recentSubmissions"`
}
