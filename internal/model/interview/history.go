package interview

import "time"

// HistoryEntry records one completed (question, suggestion) round.
type HistoryEntry struct {
	Transcript string    `json:"transcript"`
	Bullets    []string  `json:"bullets"`
	FollowUp   string    `json:"followUp"`
	CreatedAt  time.Time `json:"createdAt"`
}
