package domain

// WorkItem is an epic or feature as the remote reported it at fetch time.
// Dates are kept in the remote's own string form and are empty when unset.
type WorkItem struct {
	ID        int    `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	StartDate string `json:"startDate" yaml:"startDate"`
	EndDate   string `json:"endDate" yaml:"endDate"`
}

// Sprint is an iteration from the project's team settings.
type Sprint struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	StartDate string `json:"startDate" yaml:"startDate"`
	EndDate   string `json:"endDate" yaml:"endDate"`
}

// Scheduled reports whether both schedule dates are present.
func (w WorkItem) Scheduled() bool {
	return w.StartDate != "" && w.EndDate != ""
}

// Scheduled reports whether both iteration dates are present.
func (s Sprint) Scheduled() bool {
	return s.StartDate != "" && s.EndDate != ""
}
