package handlers

import "time"

const (
	maxHistoryPageSize    = 100 // Maximum page size for history listing
	connectionTestTimeout = 10 * time.Second
	connectionTestPrompt  = "Reply with the single word OK."
)
