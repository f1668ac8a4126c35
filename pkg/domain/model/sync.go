package model

import "time"

// SyncTrigger tells what started a sync run
type SyncTrigger string

const (
	SyncTriggerManual   SyncTrigger = "manual"
	SyncTriggerSchedule SyncTrigger = "schedule"
	SyncTriggerWebhook  SyncTrigger = "webhook"
)

// FailedReport records a report that could not be downloaded, parsed or stored
type FailedReport struct {
	Name  string `json:"name" firestore:"name"`
	URL   string `json:"url" firestore:"url"`
	Error string `json:"error" firestore:"error"`
}

// SyncResult is the outcome of one data preparation run
type SyncResult struct {
	ID         string         `json:"id" firestore:"id"`
	Trigger    SyncTrigger    `json:"trigger" firestore:"trigger"`
	StartedAt  time.Time      `json:"started_at" firestore:"started_at"`
	FinishedAt time.Time      `json:"finished_at" firestore:"finished_at"`
	Listed     int            `json:"listed" firestore:"listed"`
	Downloaded []string       `json:"downloaded" firestore:"downloaded"`
	Skipped    []string       `json:"skipped" firestore:"skipped"`
	Failed     []FailedReport `json:"failed" firestore:"failed"`
	Published  bool           `json:"published" firestore:"published"`
}

// HasFailure reports whether at least one report failed
func (r *SyncResult) HasFailure() bool {
	return len(r.Failed) > 0
}

// ManifestEntry describes one stored report in the catalog manifest
type ManifestEntry struct {
	Label string `json:"label" toml:"label"`
	File  string `json:"file" toml:"file"`
	Month string `json:"month" toml:"month"`
	Days  int    `json:"days" toml:"days"`
}

// Manifest is the catalog of stored reports, newest first. It only depends on the
// stored reports so that an idle run rewrites it byte for byte.
type Manifest struct {
	Station string          `json:"station,omitempty" toml:"station,omitempty"`
	LastDay time.Time       `json:"last_day" toml:"last_day"`
	Reports []ManifestEntry `json:"reports" toml:"reports"`
}

// SyncOptions controls one sync run
type SyncOptions struct {
	Trigger SyncTrigger
	Publish bool
}
