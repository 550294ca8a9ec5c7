package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/crucial707/timetable/internal/auth"
	"github.com/crucial707/timetable/internal/metrics"
	"github.com/crucial707/timetable/internal/models"
	"github.com/crucial707/timetable/internal/repo"
)

// Directory owns user identity records and their extended profiles.
type Directory struct {
	users   UserStore
	entries ScheduleStore
	hasher  auth.PasswordHasher
	tokens  TokenIssuer
	log     *logrus.Logger
}

func NewDirectory(users UserStore, entries ScheduleStore, hasher auth.PasswordHasher, tokens TokenIssuer, log *logrus.Logger) *Directory {
	return &Directory{users: users, entries: entries, hasher: hasher, tokens: tokens, log: log}
}

// requireCredentials returns the normalized username, or a ValidationError when either
// credential is empty. Every directory operation keys users by the normalized form.
func requireCredentials(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	fields := make(map[string]string)
	if username == "" {
		fields["username"] = "is required"
	}
	if password == "" {
		fields["password"] = "is required"
	}
	if len(fields) > 0 {
		return "", &ValidationError{Fields: fields}
	}
	return username, nil
}

// Register creates the user with an empty profile and returns a fresh session token.
func (d *Directory) Register(ctx context.Context, username, password string) (string, error) {
	username, err := requireCredentials(username, password)
	if err != nil {
		return "", err
	}

	hash, err := d.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	// Signed before the insert so a signing failure leaves no account behind.
	token, err := d.tokens.Issue(username)
	if err != nil {
		return "", err
	}

	if _, err := d.users.Create(ctx, username, hash); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return "", ErrConflict
		}
		return "", storageFailure(d.log, "create user", username, err)
	}

	d.log.WithField("username", username).Info("user registered")
	return token, nil
}

// Deregister deletes username after checking password. Schedule entries cascade.
func (d *Directory) Deregister(ctx context.Context, username, password string) error {
	username, err := requireCredentials(username, password)
	if err != nil {
		return err
	}

	u, err := d.users.GetByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return storageFailure(d.log, "lookup user", username, err)
	}
	if !d.hasher.Verify(password, u.PasswordHash) {
		return ErrIncorrectPassword
	}

	err = d.users.Delete(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return storageFailure(d.log, "delete user", username, err)
	}

	d.log.WithField("username", username).Info("user deregistered")
	return nil
}

// Authenticate checks the credentials and returns a fresh token with the current profile.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (d *Directory) Authenticate(ctx context.Context, username, password string) (string, *models.Profile, error) {
	username, err := requireCredentials(username, password)
	if err != nil {
		return "", nil, err
	}

	u, err := d.users.GetByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, storageFailure(d.log, "lookup user", username, err)
	}
	if !d.hasher.Verify(password, u.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := d.tokens.Issue(username)
	if err != nil {
		return "", nil, err
	}

	profile, err := d.users.GetProfile(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		profile = &models.Profile{Username: username, DisplayName: username, CreatedAt: u.CreatedAt}
	} else if err != nil {
		return "", nil, storageFailure(d.log, "load profile", username, err)
	}
	return token, profile, nil
}

func (d *Directory) GetProfile(ctx context.Context, username string) (*models.Profile, error) {
	p, err := d.users.GetProfile(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageFailure(d.log, "load profile", username, err)
	}
	return p, nil
}

// PatchProfile applies every present, non-empty profile field independently, like
// ScheduleEngine.PatchEntry. A successful display_name change is copied onto the
// instructor column of the owner's schedule entries and reported as field "instructor".
func (d *Directory) PatchProfile(ctx context.Context, owner string, patch map[string]string) ([]models.FieldOutcome, error) {
	present := presentFields(patch, models.ProfileFields)
	if owner == "" || len(present) == 0 {
		return nil, ErrNothingToUpdate
	}

	outcomes := make([]models.FieldOutcome, 0, len(present)+1)
	for _, f := range present {
		out := d.patchField(ctx, owner, f)
		metrics.IncPatchField("profile", f.name, out.Updated)
		outcomes = append(outcomes, out)

		if f.name == "display_name" && out.Updated {
			sync := d.syncInstructor(ctx, owner, f.value)
			metrics.IncPatchField("schedule", sync.Field, sync.Updated)
			outcomes = append(outcomes, sync)
		}
	}
	return outcomes, nil
}

func (d *Directory) patchField(ctx context.Context, owner string, f fieldValue) models.FieldOutcome {
	out := models.FieldOutcome{Field: f.name}
	n, err := d.users.UpdateProfileField(ctx, owner, f.name, f.value)
	switch {
	case err != nil:
		d.log.WithFields(logrus.Fields{"username": owner, "field": f.name}).WithError(err).Error("profile field update failed")
		out.Message = f.name + " not updated"
	case n == 0:
		out.Message = "profile not found"
	default:
		out.Updated = true
		out.Rows = n
		out.Message = f.name + " updated"
	}
	return out
}

func (d *Directory) syncInstructor(ctx context.Context, owner, name string) models.FieldOutcome {
	out := models.FieldOutcome{Field: "instructor"}
	n, err := d.entries.SyncInstructor(ctx, owner, name)
	if err != nil {
		d.log.WithField("username", owner).WithError(err).Error("instructor sync failed")
		out.Message = "instructor not updated"
		return out
	}
	out.Updated = true
	out.Rows = n
	out.Message = "instructor updated"
	return out
}
