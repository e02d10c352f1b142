package model

// Dashboard is the admin landing summary.
type Dashboard struct {
	Database     string `json:"database"` // "ok" | "unavailable"
	ProjectCount int    `json:"project_count"`
	UnreadCount  int64  `json:"unread_count"`
}

// Healthy reports whether the database answered the last ping.
func (d *Dashboard) Healthy() bool {
	return d.Database == "ok"
}
