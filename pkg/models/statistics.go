package models

// DailyStatistics counts graded cards of one calendar day
type DailyStatistics struct {
	Day    string `json:"day" db:"day"`
	Knew   int    `json:"knew" db:"knew"`
	Forgot int    `json:"forgot" db:"forgot"`
}

// Total returns the number of graded cards
func (s DailyStatistics) Total() int {
	return s.Knew + s.Forgot
}
