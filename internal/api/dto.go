package api

import (
	"time"

	"github.com/bergsten/raido/internal/outline"
	"github.com/bergsten/raido/internal/settings"
)

// SetStatusRequest is the request body for changing a project's status.
type SetStatusRequest struct {
	Status string `json:"status" example:"on-hold"`
}

// SetGroupRequest is the request body for changing a project's group.
// An empty group ungroups the project within its section.
type SetGroupRequest struct {
	Group string `json:"group" example:"Foundation"`
}

// MoveRequest is the request body for a manual board move.
type MoveRequest struct {
	Project string `json:"project" example:"Alpha"`
	Section string `json:"section" example:"On Hold"`
	Group   string `json:"group,omitempty" example:"Parked"`
}

// BoardResponse wraps the parsed priorities document.
type BoardResponse struct {
	Sections []*outline.Section `json:"sections"`
	Unlisted []string           `json:"unlisted"`
}

// ProjectItem is one row in a project listing.
type ProjectItem struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Status    string    `json:"status,omitempty"`
	Group     string    `json:"group,omitempty"`
	Category  string    `json:"category,omitempty"`
	Emoji     string    `json:"emoji,omitempty"`
	Tags      []string  `json:"tags"`
	Tracked   bool      `json:"tracked"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectListResponse wraps project listings.
type ProjectListResponse struct {
	Projects []ProjectItem `json:"projects"`
	Total    int           `json:"total"`
}

// ResyncResponse reports how many placement jobs a bulk resync queued.
type ResyncResponse struct {
	Queued int `json:"queued"`
}

// SettingsResponse is the persisted dashboard settings record.
type SettingsResponse = settings.Settings
