// Package service implements the user directory and the schedule engine on top of
// the persistence interfaces satisfied by internal/repo.
package service

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/crucial707/timetable/internal/models"
)

// UserStore is the persistence the directory and the schedule engine need for users.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Delete(ctx context.Context, username string) error
	GetProfile(ctx context.Context, username string) (*models.Profile, error)
	DisplayName(ctx context.Context, username string) (string, error)
	UpdateProfileField(ctx context.Context, username, field, value string) (int64, error)
}

// ScheduleStore is the persistence for schedule entries.
type ScheduleStore interface {
	PeriodTaken(ctx context.Context, username string, period int) (bool, error)
	Create(ctx context.Context, username, instructor string, in models.NewEntry) (*models.Entry, error)
	ListByUsername(ctx context.Context, username string) ([]models.Entry, error)
	UpdateField(ctx context.Context, username, field string, value any) (int64, error)
	SyncInstructor(ctx context.Context, username, instructor string) (int64, error)
}

// TokenIssuer mints a session token for a username.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

type fieldValue struct {
	name  string
	value string
}

// presentFields picks the non-empty values of the recognized keys, in the order of keys.
func presentFields(in map[string]string, keys []string) []fieldValue {
	var out []fieldValue
	for _, k := range keys {
		v, ok := in[k]
		if !ok {
			continue
		}
		if v = strings.TrimSpace(v); v == "" {
			continue
		}
		out = append(out, fieldValue{name: k, value: v})
	}
	return out
}
