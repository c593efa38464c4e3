package consts

import "time"

// Heartbeat and health checks
const (
	HeartbeatInterval     = 30 * time.Second
	StaleProcessThreshold = 2 * time.Minute
)

// Network timeouts
const (
	HTTPClientTimeout = 30 * time.Second
	ScraperTimeout    = 60 * time.Second
)

// UI and display
const (
	CountdownTickInterval = 1 * time.Second
)
