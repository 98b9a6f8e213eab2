package model

import "time"

// LeadFilter holds criteria for querying leads. All set fields are combined
// with AND. Zero values (empty strings, empty slices, nil pointers) mean
// "no constraint on that field"; a non-nil *bool false is still a constraint.
type LeadFilter struct {
	Email   string   `json:"email,omitempty"`   // case-insensitive substring
	Company string   `json:"company,omitempty"` // case-insensitive substring
	City    string   `json:"city,omitempty"`    // case-insensitive substring
	Status  []Status `json:"status,omitempty"`
	Source  []Source `json:"source,omitempty"`

	ScoreMin *int     `json:"score_min,omitempty"`
	ScoreMax *int     `json:"score_max,omitempty"`
	ValueMin *float64 `json:"value_min,omitempty"`
	ValueMax *float64 `json:"value_max,omitempty"`

	CreatedAfter   *time.Time `json:"created_after,omitempty"`
	CreatedBefore  *time.Time `json:"created_before,omitempty"`
	ActivityAfter  *time.Time `json:"activity_after,omitempty"`
	ActivityBefore *time.Time `json:"activity_before,omitempty"`

	Qualified *bool `json:"qualified,omitempty"`
}
