package model

import "time"

// ResultEntry points at a finished artifact. Entries are created once, after
// a successful pipeline run, and only ever removed.
type ResultEntry struct {
	ID        string
	FilePath  string
	ExpiresAt time.Time
}

// Expired reports whether the entry is past its horizon at now.
func (e ResultEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
