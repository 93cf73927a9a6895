package models

// ForgotCount is the number of times a card was graded "forgot" during one day
type ForgotCount struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// DailyForgotStats maps a calendar day (YYYY-MM-DD) to its forget counters in first-bumped order
type DailyForgotStats map[string][]ForgotCount
