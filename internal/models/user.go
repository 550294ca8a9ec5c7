package models

import "time"

type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the extended, user-editable part of a directory record.
// DisplayName is never empty: an unset name resolves to the username.
type Profile struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Department  string    `json:"department"`
	Phone       string    `json:"phone"`
	CreatedAt   time.Time `json:"created_at"`
}

// Profile columns accepted by a sparse profile patch, in the order they are applied.
var ProfileFields = []string{"display_name", "department", "phone"}
