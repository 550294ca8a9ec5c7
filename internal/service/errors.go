package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage failure")

	// ErrNothingToUpdate is the aggregate failure of a sparse patch that carried no usable field.
	ErrNothingToUpdate = errors.New("update failed")

	ErrUserNotFound       = errors.New("user not found")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError lists the offending input fields. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// storageFailure logs a persistence error once and returns it wrapped so callers can match
// ErrStorage without seeing the driver's message.
func storageFailure(log *logrus.Logger, op, username string, err error) error {
	wrapped := oops.
		Code("STORAGE").
		In("service").
		With("op", op, "username", username).
		Wrapf(err, "%s", op)
	log.WithFields(logrus.Fields{"op": op, "username": username}).WithError(err).Error("storage failure")
	return fmt.Errorf("%w: %w", ErrStorage, wrapped)
}
