package models

import "time"

// Entry is one period of a user's weekly class schedule.
type Entry struct {
	ID         int       `json:"id"`
	Username   string    `json:"username"`
	Day        string    `json:"day"`
	FromTime   string    `json:"from_time"`
	ToTime     string    `json:"to_time"`
	Period     int       `json:"period"`
	Subject    string    `json:"subject"`
	Branch     string    `json:"branch"`
	Section    string    `json:"section"`
	Instructor string    `json:"instructor"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewEntry is the caller-supplied part of an Entry. Every field is required;
// the period upper bound comes from configuration and is checked separately.
type NewEntry struct {
	Day      string `json:"day" validate:"required"`
	FromTime string `json:"from_time" validate:"required"`
	ToTime   string `json:"to_time" validate:"required"`
	Period   int    `json:"period" validate:"required,gte=1"`
	Subject  string `json:"subject" validate:"required"`
	Branch   string `json:"branch" validate:"required"`
	Section  string `json:"section" validate:"required"`
}

// Schedule columns accepted by a sparse schedule patch, in the order they are applied.
var EntryFields = []string{"day", "from_time", "to_time", "period", "subject", "branch", "section"}

// FieldOutcome reports the result of updating a single column during a sparse patch.
type FieldOutcome struct {
	Field   string `json:"field"`
	Updated bool   `json:"updated"`
	Rows    int64  `json:"rows"`
	Message string `json:"message"`
}
