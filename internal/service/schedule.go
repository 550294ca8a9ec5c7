package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/crucial707/timetable/internal/metrics"
	"github.com/crucial707/timetable/internal/models"
	"github.com/crucial707/timetable/internal/repo"
)

// ScheduleEngine admits, lists and sparsely patches a user's weekly schedule entries.
//
// Admission rules for a new entry: every field present, 1 <= period <= maxPeriod, and
// no other entry of the same owner on that period. The last rule is checked before the
// insert and enforced again by the (username, period) unique constraint.
type ScheduleEngine struct {
	users     UserStore
	entries   ScheduleStore
	maxPeriod int
	validate  *validator.Validate
	log       *logrus.Logger
}

func NewScheduleEngine(users UserStore, entries ScheduleStore, maxPeriod int, log *logrus.Logger) *ScheduleEngine {
	return &ScheduleEngine{
		users:     users,
		entries:   entries,
		maxPeriod: maxPeriod,
		validate:  newValidator(),
		log:       log,
	}
}

// MaxPeriod is the configured upper bound for period numbers.
func (e *ScheduleEngine) MaxPeriod() int {
	return e.maxPeriod
}

// CreateEntry stores one entry for owner, stamping the owner's current display name as instructor.
// Nothing is written unless every check passes.
func (e *ScheduleEngine) CreateEntry(ctx context.Context, owner string, in models.NewEntry) (*models.Entry, error) {
	if owner == "" {
		return nil, ErrNotFound
	}
	in = trimEntry(in)
	if fields := e.checkEntry(in); len(fields) > 0 {
		metrics.IncEntryCreate("invalid")
		return nil, &ValidationError{Fields: fields}
	}

	instructor, err := e.users.DisplayName(ctx, owner)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		metrics.IncEntryCreate("error")
		return nil, storageFailure(e.log, "lookup display name", owner, err)
	}

	taken, err := e.entries.PeriodTaken(ctx, owner, in.Period)
	if err != nil {
		metrics.IncEntryCreate("error")
		return nil, storageFailure(e.log, "check period", owner, err)
	}
	if taken {
		metrics.IncEntryCreate("conflict")
		return nil, ErrConflict
	}

	entry, err := e.entries.Create(ctx, owner, instructor, in)
	if errors.Is(err, repo.ErrDuplicate) {
		metrics.IncEntryCreate("conflict")
		return nil, ErrConflict
	}
	if err != nil {
		metrics.IncEntryCreate("error")
		return nil, storageFailure(e.log, "insert entry", owner, err)
	}

	metrics.IncEntryCreate("created")
	e.log.WithFields(logrus.Fields{"username": owner, "period": entry.Period}).Debug("schedule entry created")
	return entry, nil
}

// ListEntries returns owner's entries ordered by period. An owner with no entries gets an empty slice.
func (e *ScheduleEngine) ListEntries(ctx context.Context, owner string) ([]models.Entry, error) {
	if owner == "" {
		return nil, ErrNotFound
	}
	list, err := e.entries.ListByUsername(ctx, owner)
	if err != nil {
		return nil, storageFailure(e.log, "list entries", owner, err)
	}
	if list == nil {
		list = []models.Entry{}
	}
	return list, nil
}

// PatchEntry applies every present, non-empty field of patch to all of owner's entries.
// Each field is its own statement and gets its own outcome; a failed field does not stop
// or undo the others. A patch with no usable field fails as a whole with ErrNothingToUpdate.
func (e *ScheduleEngine) PatchEntry(ctx context.Context, owner string, patch map[string]string) ([]models.FieldOutcome, error) {
	present := presentFields(patch, models.EntryFields)
	if owner == "" || len(present) == 0 {
		return nil, ErrNothingToUpdate
	}

	outcomes := make([]models.FieldOutcome, 0, len(present))
	for _, f := range present {
		out := e.patchField(ctx, owner, f)
		metrics.IncPatchField("schedule", f.name, out.Updated)
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

func (e *ScheduleEngine) patchField(ctx context.Context, owner string, f fieldValue) models.FieldOutcome {
	out := models.FieldOutcome{Field: f.name}

	var value any = f.value
	if f.name == "period" {
		p, msg := e.parsePeriod(f.value)
		if msg != "" {
			out.Message = msg
			return out
		}
		value = p
	}

	n, err := e.entries.UpdateField(ctx, owner, f.name, value)
	switch {
	case errors.Is(err, repo.ErrDuplicate):
		out.Message = "period already used by another entry"
	case err != nil:
		e.log.WithFields(logrus.Fields{"username": owner, "field": f.name}).WithError(err).Error("schedule field update failed")
		out.Message = f.name + " not updated"
	default:
		out.Updated = true
		out.Rows = n
		out.Message = f.name + " updated"
	}
	return out
}

func (e *ScheduleEngine) parsePeriod(s string) (int, string) {
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, "period must be a whole number"
	}
	if err := e.validate.Var(p, fmt.Sprintf("gte=1,lte=%d", e.maxPeriod)); err != nil {
		return 0, fmt.Sprintf("period must be between 1 and %d", e.maxPeriod)
	}
	return p, ""
}

// checkEntry returns a field -> message map for every admission rule in breaks.
func (e *ScheduleEngine) checkEntry(in models.NewEntry) map[string]string {
	fields := make(map[string]string)
	if err := e.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[fe.Field()] = formatFieldError(fe)
			}
		} else {
			fields["entry"] = "is invalid"
		}
	}
	if _, bad := fields["period"]; !bad {
		if err := e.validate.Var(in.Period, fmt.Sprintf("lte=%d", e.maxPeriod)); err != nil {
			fields["period"] = fmt.Sprintf("must be at most %d", e.maxPeriod)
		}
	}
	return fields
}

func trimEntry(in models.NewEntry) models.NewEntry {
	in.Day = strings.TrimSpace(in.Day)
	in.FromTime = strings.TrimSpace(in.FromTime)
	in.ToTime = strings.TrimSpace(in.ToTime)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Branch = strings.TrimSpace(in.Branch)
	in.Section = strings.TrimSpace(in.Section)
	return in
}
