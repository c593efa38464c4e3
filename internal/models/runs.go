package models

import "time"

// Run records one archive pass.
type Run struct {
	ID          int64     `json:"id"`
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Channels    int       `json:"channels"`
	Listed      int       `json:"listed"`
	Transferred int       `json:"transferred"`
	Muxed       int       `json:"muxed"`
	Failed      int       `json:"failed"`
	Error       string    `json:"error,omitempty"`
}
