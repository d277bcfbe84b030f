package domain

import "time"

// Target is one monitored endpoint as loaded from the services file.
// Check history is keyed by Name, not ID.
type Target struct {
	ID   string `yaml:"id" json:"id" validate:"required"`
	Name string `yaml:"name" json:"name" validate:"required"`
	URL  string `yaml:"url" json:"url" validate:"required,http_url"`
}

// CheckResult is one persisted probe outcome. Records are append-only.
type CheckResult struct {
	ServiceName    string    `json:"service_name"`
	CheckedAt      time.Time `json:"checked_at"`
	Status         bool      `json:"status"`
	ResponseTimeMS int64     `json:"response_time"` // 0 unless Status is true
}
