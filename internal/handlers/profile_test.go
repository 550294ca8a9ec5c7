package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/crucial707/timetable/internal/models"
)

func TestProfileHandler_GetProfile(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectQuery(`FROM user_profile`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"username", "display_name", "department", "phone", "created_at"}).
			AddRow("alice", "alice", "", "", time.Now()))

	rr := httptest.NewRecorder()
	f.profile.GetProfile(rr, asUser(httptest.NewRequest("GET", "/profile", nil), "alice"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var p models.Profile
	json.Unmarshal(decodeOutcome(t, rr).Data, &p)
	if p.Username != "alice" || p.DisplayName != "alice" {
		t.Errorf("unexpected profile: %+v", p)
	}
}

func TestProfileHandler_GetProfile_NotFound(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectQuery(`FROM user_profile`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	rr := httptest.NewRecorder()
	f.profile.GetProfile(rr, asUser(httptest.NewRequest("GET", "/profile", nil), "ghost"))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestProfileHandler_PatchProfile_SyncsInstructor(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectExec(`UPDATE user_profile SET display_name = \$1 WHERE username = \$2`).
		WithArgs("Dr. Alice", "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec(`UPDATE schedule SET instructor = \$1 WHERE username = \$2`).
		WithArgs("Dr. Alice", "alice").
		WillReturnResult(sqlmock.NewResult(0, 3))

	rr := httptest.NewRecorder()
	f.profile.PatchProfile(rr, asUser(jsonRequest("PATCH", "/profile", map[string]any{"display_name": "Dr. Alice"}), "alice"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var outcomes []models.FieldOutcome
	json.Unmarshal(decodeOutcome(t, rr).Data, &outcomes)
	if len(outcomes) != 2 || outcomes[1].Field != "instructor" || outcomes[1].Rows != 3 {
		t.Errorf("unexpected outcomes: %+v", outcomes)
	}
}

func TestProfileHandler_PatchProfile_InvalidJSON(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.profile.PatchProfile(rr, asUser(jsonRequest("PATCH", "/profile", "[1,2"), "alice"))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}
