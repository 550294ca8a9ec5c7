package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/crucial707/timetable/internal/models"
	"github.com/crucial707/timetable/internal/service"
)

// ScheduleHandler serves the caller's weekly schedule.
type ScheduleHandler struct {
	Engine *service.ScheduleEngine
}

// CreateEntry adds one period. Body: {"day","from_time","to_time","period","subject","branch","section"};
// period may be a JSON number or a numeric string.
func (h *ScheduleHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input struct {
		Day      string `json:"day"`
		FromTime string `json:"from_time"`
		ToTime   string `json:"to_time"`
		Period   any    `json:"period"`
		Subject  string `json:"subject"`
		Branch   string `json:"branch"`
		Section  string `json:"section"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	period, ok := parsePeriod(input.Period)
	if !ok {
		JSONValidationError(w, "Schedule not created", map[string]string{"period": "must be a whole number"}, http.StatusBadRequest)
		return
	}

	entry, err := h.Engine.CreateEntry(r.Context(), username, models.NewEntry{
		Day:      input.Day,
		FromTime: input.FromTime,
		ToTime:   input.ToTime,
		Period:   period,
		Subject:  input.Subject,
		Branch:   input.Branch,
		Section:  input.Section,
	})
	if err != nil {
		writeServiceError(w, err, "Schedule not created")
		return
	}

	JSONOK(w, http.StatusCreated, "Schedule created", entry)
}

// ListEntries returns the caller's entries ordered by period.
func (h *ScheduleHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}

	list, err := h.Engine.ListEntries(r.Context(), username)
	if err != nil {
		writeServiceError(w, err, "Schedule not fetched")
		return
	}

	message := "Schedule fetched"
	if len(list) == 0 {
		message = "no schedule entries"
	}
	JSONOK(w, http.StatusOK, message, list)
}

// PatchEntries applies a sparse update to every entry the caller owns.
// Body: any subset of day, from_time, to_time, period, subject, branch, section.
func (h *ScheduleHandler) PatchEntries(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}

	patch, err := decodePatch(r)
	if err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	outcomes, err := h.Engine.PatchEntry(r.Context(), username, patch)
	if err != nil {
		writeServiceError(w, err, "Schedule not updated")
		return
	}

	writeFieldOutcomes(w, "Schedule updated", outcomes)
}

// writeFieldOutcomes answers 200 with every per-field outcome. The status flag is 1
// when at least one field was written.
func writeFieldOutcomes(w http.ResponseWriter, message string, outcomes []models.FieldOutcome) {
	status := models.StatusFailed
	for _, o := range outcomes {
		if o.Updated {
			status = models.StatusOK
			break
		}
	}
	if status == models.StatusFailed {
		message = "no fields updated"
	}
	writeOutcome(w, http.StatusOK, models.Outcome{Message: message, Status: status, Data: outcomes})
}
