package model

// Job is one scheduled job as reported by the backend, rendered read-only
// by the jobs widgets.
type Job struct {
	ID      string `json:"job_id"`
	Prefix  string `json:"-"`
	Status  string `json:"status"`
	NextRun string `json:"next_run"`
}

// UserInfo is the display profile of the logged-in user
type UserInfo struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}
