package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/crucial707/timetable/internal/auth"
	"github.com/crucial707/timetable/internal/logger"
	"github.com/crucial707/timetable/internal/middleware"
	"github.com/crucial707/timetable/internal/repo"
	"github.com/crucial707/timetable/internal/service"
)

type fixture struct {
	mock     sqlmock.Sqlmock
	hasher   *auth.BcryptHasher
	tokens   *auth.TokenService
	auth     *AuthHandler
	profile  *ProfileHandler
	schedule *ScheduleHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations: %v", err)
		}
		db.Close()
	})

	log := logger.Discard()
	users := repo.NewUserRepo(db)
	entries := repo.NewScheduleRepo(db)
	hasher := &auth.BcryptHasher{Cost: bcrypt.MinCost}
	tokens := auth.NewTokenService("test-secret", time.Hour)
	dir := service.NewDirectory(users, entries, hasher, tokens, log)

	return &fixture{
		mock:     mock,
		hasher:   hasher,
		tokens:   tokens,
		auth:     &AuthHandler{Directory: dir},
		profile:  &ProfileHandler{Directory: dir},
		schedule: &ScheduleHandler{Engine: service.NewScheduleEngine(users, entries, 8, log)},
	}
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// asUser attaches username to the request the way the JWT middleware does.
func asUser(req *http.Request, username string) *http.Request {
	return req.WithContext(middleware.WithUsername(req.Context(), username))
}

type outcome struct {
	Message string            `json:"message"`
	Status  int               `json:"status"`
	Data    json.RawMessage   `json:"data"`
	Fields  map[string]string `json:"fields"`
}

func decodeOutcome(t *testing.T, rr *httptest.ResponseRecorder) outcome {
	t.Helper()
	var out outcome
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}
