// Package client is the CLI's thin JSON client for the timetable API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crucial707/timetable/cmd/cli/config"
	"github.com/crucial707/timetable/internal/models"
)

var httpClient = &http.Client{Timeout: 15 * time.Second}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Outcome    models.Outcome
}

func (e *APIError) Error() string {
	msg := e.Outcome.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if len(e.Outcome.Fields) > 0 {
		return fmt.Sprintf("status %d: %s %v", e.StatusCode, msg, e.Outcome.Fields)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, msg)
}

// Call sends payload (if non-nil) as JSON and decodes the outcome envelope. When out is
// non-nil the envelope's data member is decoded into it.
func Call(method, path, token string, payload, out any) (*models.Outcome, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, config.APIURL()+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var envelope struct {
		models.Outcome
		Data json.RawMessage `json:"data"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
	}

	outcome := envelope.Outcome
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &outcome, &APIError{StatusCode: resp.StatusCode, Outcome: outcome}
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return &outcome, err
		}
	}
	return &outcome, nil
}

// CallAuthed is Call with the locally stored token.
func CallAuthed(method, path string, payload, out any) (*models.Outcome, error) {
	token, err := config.LoadToken()
	if err != nil {
		return nil, err
	}
	return Call(method, path, token, payload, out)
}
