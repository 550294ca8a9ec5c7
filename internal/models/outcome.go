package models

const (
	StatusFailed = 0
	StatusOK     = 1
)

// Outcome is the response envelope for every API call.
type Outcome struct {
	Message string            `json:"message"`
	Status  int               `json:"status"`
	Data    any               `json:"data,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}
