package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucial707/timetable/internal/auth"
	"github.com/crucial707/timetable/internal/logger"
	"github.com/crucial707/timetable/internal/models"
)

func newTokens() *auth.TokenService {
	return auth.NewTokenService("test-secret", time.Hour)
}

func newDirectory(t *testing.T) (*Directory, *ScheduleEngine, *memStore) {
	t.Helper()
	store := newMemStore()
	log := logger.Discard()
	dir := NewDirectory(store, memEntries{store}, plainHasher{}, newTokens(), log)
	eng := NewScheduleEngine(store, memEntries{store}, testMaxPeriod, log)
	return dir, eng, store
}

func TestRegister_ThenAuthenticate(t *testing.T) {
	dir, _, _ := newDirectory(t)
	ctx := context.Background()

	regToken, err := dir.Register(ctx, "alice", "p@ss")
	require.NoError(t, err)
	require.NotEmpty(t, regToken)

	token, profile, err := dir.Authenticate(ctx, "alice", "p@ss")
	require.NoError(t, err)

	claims, err := newTokens().Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	require.NotNil(t, profile)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "alice", profile.DisplayName)
}

func TestRegister_ThenAuthenticate_PaddedUsername(t *testing.T) {
	dir, _, store := newDirectory(t)
	ctx := context.Background()

	_, err := dir.Register(ctx, " alice ", "p@ss")
	require.NoError(t, err)
	assert.Contains(t, store.users, "alice")

	token, profile, err := dir.Authenticate(ctx, " alice ", "p@ss")
	require.NoError(t, err)
	claims, err := newTokens().Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice", profile.Username)

	_, _, err = dir.Authenticate(ctx, "alice", "p@ss")
	require.NoError(t, err)

	require.NoError(t, dir.Deregister(ctx, "\talice ", "p@ss"))
	assert.NotContains(t, store.users, "alice")
}

func TestRegister_BlankUsername(t *testing.T) {
	dir, _, _ := newDirectory(t)

	_, err := dir.Register(context.Background(), "   ", "p@ss")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")
}

type failingIssuer struct{}

func (failingIssuer) Issue(string) (string, error) {
	return "", auth.ErrTokenGeneration
}

func TestRegister_TokenFailureCreatesNoUser(t *testing.T) {
	store := newMemStore()
	dir := NewDirectory(store, memEntries{store}, plainHasher{}, failingIssuer{}, logger.Discard())

	_, err := dir.Register(context.Background(), "alice", "p@ss")
	require.ErrorIs(t, err, auth.ErrTokenGeneration)
	assert.NotContains(t, store.users, "alice")
}

func TestRegister_Rejections(t *testing.T) {
	dir, _, _ := newDirectory(t)
	ctx := context.Background()

	_, err := dir.Register(ctx, "", "p@ss")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = dir.Register(ctx, "alice", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = dir.Register(ctx, "alice", "p@ss")
	require.NoError(t, err)
	_, err = dir.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegister_StorageFailure(t *testing.T) {
	dir, _, store := newDirectory(t)
	store.failErr = errors.New("pq: too many connections")
	store.failOn["Create"] = true

	_, err := dir.Register(context.Background(), "alice", "p@ss")
	require.ErrorIs(t, err, ErrStorage)
}

func TestAuthenticate_DoesNotRevealWhichPartFailed(t *testing.T) {
	dir, _, _ := newDirectory(t)
	ctx := context.Background()
	_, err := dir.Register(ctx, "alice", "p@ss")
	require.NoError(t, err)

	_, _, wrongPassword := dir.Authenticate(ctx, "alice", "nope")
	_, _, unknownUser := dir.Authenticate(ctx, "mallory", "p@ss")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestDeregister(t *testing.T) {
	dir, eng, _ := newDirectory(t)
	ctx := context.Background()
	_, err := dir.Register(ctx, "alice", "p@ss")
	require.NoError(t, err)
	_, err = eng.CreateEntry(ctx, "alice", entry(1, "Math"))
	require.NoError(t, err)

	assert.ErrorIs(t, dir.Deregister(ctx, "alice", "wrong"), ErrIncorrectPassword)
	assert.ErrorIs(t, dir.Deregister(ctx, "ghost", "p@ss"), ErrUserNotFound)

	require.NoError(t, dir.Deregister(ctx, "alice", "p@ss"))

	list, err := eng.ListEntries(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, list, "entries cascade with the user")

	_, _, err = dir.Authenticate(ctx, "alice", "p@ss")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPatchProfile_RenameSyncsInstructor(t *testing.T) {
	dir, eng, _ := newDirectory(t)
	ctx := context.Background()
	_, err := dir.Register(ctx, "alice", "p@ss")
	require.NoError(t, err)
	for p := 1; p <= 2; p++ {
		_, err := eng.CreateEntry(ctx, "alice", entry(p, "Math"))
		require.NoError(t, err)
	}

	outcomes, err := dir.PatchProfile(ctx, "alice", map[string]string{"display_name": "Dr. Alice"})
	require.NoError(t, err)
	assert.Equal(t, []models.FieldOutcome{
		{Field: "display_name", Updated: true, Rows: 1, Message: "display_name updated"},
		{Field: "instructor", Updated: true, Rows: 2, Message: "instructor updated"},
	}, outcomes)

	list, err := eng.ListEntries(ctx, "alice")
	require.NoError(t, err)
	for _, e := range list {
		assert.Equal(t, "Dr. Alice", e.Instructor)
	}

	p, err := dir.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Alice", p.DisplayName)
}

func TestPatchProfile_RenameWithoutEntries(t *testing.T) {
	dir, _, _ := newDirectory(t)
	ctx := context.Background()
	_, err := dir.Register(ctx, "alice", "p@ss")
	require.NoError(t, err)

	outcomes, err := dir.PatchProfile(ctx, "alice", map[string]string{"display_name": "Dr. Alice", "phone": "555-0100"})
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].Updated)
	assert.Equal(t, models.FieldOutcome{Field: "instructor", Updated: true, Rows: 0, Message: "instructor updated"}, outcomes[1])
	assert.Equal(t, "phone", outcomes[2].Field)
	assert.True(t, outcomes[2].Updated)
}

func TestPatchProfile_FailedRenameSkipsSync(t *testing.T) {
	dir, _, store := newDirectory(t)
	ctx := context.Background()
	_, err := dir.Register(ctx, "alice", "p@ss")
	require.NoError(t, err)
	store.failErr = errors.New("deadlock detected")
	store.failOn["UpdateProfileField:display_name"] = true

	outcomes, err := dir.PatchProfile(ctx, "alice", map[string]string{"display_name": "Dr. Alice", "department": "Physics"})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "display_name", outcomes[0].Field)
	assert.False(t, outcomes[0].Updated)
	assert.Equal(t, "department", outcomes[1].Field)
	assert.True(t, outcomes[1].Updated)
}

func TestPatchProfile_NothingToUpdate(t *testing.T) {
	dir, _, _ := newDirectory(t)
	_, err := dir.PatchProfile(context.Background(), "alice", map[string]string{"username": "root"})
	assert.ErrorIs(t, err, ErrNothingToUpdate)
}

func TestGetProfile_NotFound(t *testing.T) {
	dir, _, _ := newDirectory(t)
	_, err := dir.GetProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
