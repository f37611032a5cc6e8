package models

// Requests for the supervisor HTTP endpoints. Defined in domain for consistency and reuse.

type StartRequest struct {
	Day   string  `query:"day" json:"day" validate:"required,datetime=2006-01-02"`
	Speed float64 `query:"speed" json:"speed" default:"5.0" validate:"gt=0,lte=1000"`
}

type StatusResponse struct {
	Running bool    `json:"running"`
	Day     string  `json:"day,omitempty"`
	Speed   float64 `json:"speed,omitempty"`
	PID     int     `json:"pid,omitempty"`
}

type DaysResponse struct {
	Days []string `json:"days"`
}
