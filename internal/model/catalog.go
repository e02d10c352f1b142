package model

// Service is one of the production services offered on the site.
type Service struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Benefit      string   `json:"benefit" yaml:"benefit"`
	Deliverables []string `json:"deliverables" yaml:"deliverables"`
	Icon         string   `json:"icon" yaml:"icon"`
}

// Tournament states.
const (
	TournamentLive      = "Live"
	TournamentUpcoming  = "Upcoming"
	TournamentCompleted = "Completed"
)

// ScheduleItem is one row of a tournament's day schedule.
type ScheduleItem struct {
	Time     string `json:"time" yaml:"time"`
	Activity string `json:"activity" yaml:"activity"`
}

// Tournament is an event produced or hosted by the company.
type Tournament struct {
	ID             string         `json:"id" yaml:"id"`
	Title          string         `json:"title" yaml:"title"`
	Status         string         `json:"status" yaml:"status"`
	Date           string         `json:"date" yaml:"date"`
	PrizePool      string         `json:"prizePool" yaml:"prizePool"`
	Game           string         `json:"game" yaml:"game"`
	Image          string         `json:"image" yaml:"image"`
	Summary        string         `json:"summary" yaml:"summary"`
	Format         string         `json:"format,omitempty" yaml:"format"`
	Schedule       []ScheduleItem `json:"schedule,omitempty" yaml:"schedule"`
	HighlightVideo string         `json:"highlightVideo,omitempty" yaml:"highlightVideo"`
}

// Catalog is the static marketing content.
type Catalog struct {
	Services    []Service    `json:"services" yaml:"services"`
	Tournaments []Tournament `json:"tournaments" yaml:"tournaments"`
}
