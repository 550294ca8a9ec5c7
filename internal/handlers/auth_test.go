package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func TestAuthHandler_Register(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"username", "created_at"}).AddRow("alice", time.Now()))
	f.mock.ExpectExec(`INSERT INTO user_profile`).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	rr := httptest.NewRecorder()
	f.auth.Register(rr, jsonRequest("POST", "/auth/register", map[string]string{"username": "alice", "password": "pw"}))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201", rr.Code)
	}
	out := decodeOutcome(t, rr)
	var data struct {
		Token string `json:"token"`
	}
	json.Unmarshal(out.Data, &data)
	claims, err := f.tokens.Verify(data.Token)
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.Username != "alice" || out.Status != 1 {
		t.Errorf("unexpected outcome: %+v claims=%+v", out, claims)
	}
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505"})
	f.mock.ExpectRollback()

	rr := httptest.NewRecorder()
	f.auth.Register(rr, jsonRequest("POST", "/auth/register", map[string]string{"username": "alice", "password": "pw"}))

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409", rr.Code)
	}
	if out := decodeOutcome(t, rr); out.Status != 0 {
		t.Errorf("status flag: got %d, want 0", out.Status)
	}
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.auth.Register(rr, jsonRequest("POST", "/auth/register", map[string]string{"username": "alice"}))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
	if out := decodeOutcome(t, rr); out.Fields["password"] == "" {
		t.Errorf("expected password field error, got %+v", out.Fields)
	}
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.auth.Register(rr, jsonRequest("POST", "/auth/register", "{not json"))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	f := newFixture(t)
	hash, _ := f.hasher.Hash("pw")
	now := time.Now()

	f.mock.ExpectQuery(`SELECT username, password_hash, created_at`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash", "created_at"}).AddRow("alice", hash, now))
	f.mock.ExpectQuery(`FROM user_profile`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"username", "display_name", "department", "phone", "created_at"}).
			AddRow("alice", "Dr. Alice", "Physics", "", now))

	rr := httptest.NewRecorder()
	f.auth.Login(rr, jsonRequest("POST", "/auth/login", map[string]string{"username": "alice", "password": "pw"}))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	out := decodeOutcome(t, rr)
	var data struct {
		Token   string `json:"token"`
		Profile struct {
			DisplayName string `json:"display_name"`
		} `json:"profile"`
	}
	if err := json.Unmarshal(out.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Token == "" || data.Profile.DisplayName != "Dr. Alice" {
		t.Errorf("unexpected data: %+v", data)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	hash, _ := f.hasher.Hash("pw")

	f.mock.ExpectQuery(`SELECT username, password_hash`).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)
	f.mock.ExpectQuery(`SELECT username, password_hash`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash", "created_at"}).AddRow("alice", hash, time.Now()))

	unknown := httptest.NewRecorder()
	f.auth.Login(unknown, jsonRequest("POST", "/auth/login", map[string]string{"username": "nobody", "password": "pw"}))
	wrong := httptest.NewRecorder()
	f.auth.Login(wrong, jsonRequest("POST", "/auth/login", map[string]string{"username": "alice", "password": "nope"}))

	if unknown.Code != http.StatusUnauthorized || wrong.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d and %d, want 401", unknown.Code, wrong.Code)
	}
	if a, b := decodeOutcome(t, unknown), decodeOutcome(t, wrong); a.Message != b.Message {
		t.Errorf("unknown user and wrong password must look the same: %q vs %q", a.Message, b.Message)
	}
}

func TestAuthHandler_Deregister(t *testing.T) {
	f := newFixture(t)
	hash, _ := f.hasher.Hash("pw")

	f.mock.ExpectQuery(`SELECT username, password_hash`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash", "created_at"}).AddRow("alice", hash, time.Now()))
	f.mock.ExpectExec(`DELETE FROM users WHERE username = \$1`).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rr := httptest.NewRecorder()
	f.auth.Deregister(rr, asUser(jsonRequest("DELETE", "/auth/account", map[string]string{"password": "pw"}), "alice"))

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
}

func TestAuthHandler_Deregister_WrongPassword(t *testing.T) {
	f := newFixture(t)
	hash, _ := f.hasher.Hash("pw")

	f.mock.ExpectQuery(`SELECT username, password_hash`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash", "created_at"}).AddRow("alice", hash, time.Now()))

	rr := httptest.NewRecorder()
	f.auth.Deregister(rr, asUser(jsonRequest("DELETE", "/auth/account", map[string]string{"password": "nope"}), "alice"))

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
	if out := decodeOutcome(t, rr); out.Message != "incorrect password" {
		t.Errorf("message: got %q", out.Message)
	}
}

func TestAuthHandler_Deregister_Unauthenticated(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.auth.Deregister(rr, jsonRequest("DELETE", "/auth/account", map[string]string{"password": "pw"}))

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}
