package models

import (
	"time"

	"github.com/lehigh-university-libraries/frameclassifier/internal/session"
)

// SessionView is the JSON form of a classification session returned to clients.
type SessionView struct {
	ID             string          `json:"id"`
	Source         string          `json:"source"`
	CreatedAt      time.Time       `json:"created_at"`
	Cursor         int             `json:"cursor"`
	Total          int             `json:"total"`
	CurrentImage   string          `json:"current_image,omitempty"`
	CurrentName    string          `json:"current_name,omitempty"`
	CurrentLabel   session.Label   `json:"current_label"`
	HasPrev        bool            `json:"has_prev"`
	HasNext        bool            `json:"has_next"`
	Counts         session.Counts  `json:"counts"`
	DuplicateNames []string        `json:"duplicate_names,omitempty"`
	Images         []session.Entry `json:"images,omitempty"`
}

// SessionSummary is the short form used when listing sessions.
type SessionSummary struct {
	ID        string         `json:"id"`
	Source    string         `json:"source"`
	CreatedAt time.Time      `json:"created_at"`
	Counts    session.Counts `json:"counts"`
}
