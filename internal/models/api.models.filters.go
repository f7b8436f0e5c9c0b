package models

// Query filters for dashboard endpoints, decoded from the URL query
// string with gorilla/schema.

// SessionFilters defines the available filter options for session listings.
type SessionFilters struct {
	Limit int `schema:"limit" json:"limit"`
}

// AlertFilters defines the available filter options for alert listings.
type AlertFilters struct {
	Limit          int  `schema:"limit" json:"limit"`
	Unacknowledged bool `schema:"unacknowledged" json:"unacknowledged"`
}

// WorkHoursQuery selects either a daily total (date set, YYYY-MM-DD) or
// the all-time total.
type WorkHoursQuery struct {
	Date string `schema:"date" json:"date"`
}
