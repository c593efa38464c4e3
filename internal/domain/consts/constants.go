// Package consts holds various global, unchanging values.
package consts

import "time"

// Completeness defaults.
const (
	DefaultTolerance   = 3 * time.Second
	DefaultCaptionLang = "en"
	DefaultCategory    = "Uncategorized"
)

// Concurrency defaults.
const (
	DefaultConcurrency     = 4
	DefaultItemConcurrency = 2
	DefaultCatalogCache    = 128
)

// Upstream paging.
const (
	UploadsPageSize = 50
)

// Bot avoidance delays.
const (
	DefaultStartupStaggerMinutes = 30
	DefaultBotAvoidanceSeconds   = 15
)

// DefaultBotTimeout is the block cooldown for domains missing from BotTimeoutMap.
const DefaultBotTimeout = 12 * time.Hour

// BotTimeoutMap holds the cooldown for domains that flagged the archiver as a bot.
var BotTimeoutMap = map[string]time.Duration{
	"youtube.com":          48 * time.Hour,
	"youtu.be":             48 * time.Hour,
	"googlevideo.com":      48 * time.Hour,
	"youtube-nocookie.com": 24 * time.Hour,
}

// Program messages.
const (
	TimeRemainingMsg = ColorCyan + "Time remaining:" + ColorReset
	ClearLine        = "\r\033[K"
)

// MaxDisplayedItems caps how many items are printed in per-channel summaries.
const MaxDisplayedItems = 24
