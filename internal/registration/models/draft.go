package models

import (
	"time"

	id "prospace/pkg/domain"
	dErrors "prospace/pkg/domain-errors"
)

// Draft is the aggregate root for an in-progress professional registration.
//
// Invariants:
//   - Email is the natural key until the draft is finalized
//   - CurrentStep never decreases as a result of a save (forward-only)
//   - FormData is monotonically enriched: a save adds or overwrites fields,
//     never removes previously saved ones
//   - A finalized draft is consumed and must not accept further saves
//
// Version is bumped on every applied save. It exists for observability, not
// enforcement: concurrent editors are resolved last-write-wins, which is the
// documented best-effort behavior of this system.
type Draft struct {
	ID          id.DraftID  `json:"id"`
	Email       string      `json:"email"`
	CurrentStep Step        `json:"current_step"`
	FormData    FormData    `json:"form_data"`
	Status      DraftStatus `json:"status"`
	Version     int         `json:"version"`
	LastSavedAt time.Time   `json:"last_saved_at"`
	CreatedAt   time.Time   `json:"created_at"`
}

func NewDraft(draftID id.DraftID, email string, now time.Time) (*Draft, error) {
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "draft email cannot be empty")
	}
	return &Draft{
		ID:          draftID,
		Email:       email,
		CurrentStep: Step1Info,
		Status:      DraftStatusOpen,
		Version:     0,
		CreatedAt:   now,
		LastSavedAt: now,
	}, nil
}

func (d *Draft) IsOpen() bool { return d.Status == DraftStatusOpen }

// CanSave checks whether the draft still accepts saves.
// A consumed (finalized) draft is terminal.
func (d *Draft) CanSave() error {
	if d.Status == DraftStatusFinalized {
		return dErrors.New(dErrors.CodeInvariantViolation, "draft has been finalized and cannot be saved")
	}
	return nil
}

// ApplySave merges a form snapshot into the draft. The step only moves
// forward; a save from an earlier step keeps the furthest step reached.
// Call CanSave first to validate the transition.
func (d *Draft) ApplySave(step Step, data FormData, now time.Time) {
	if step > d.CurrentStep {
		d.CurrentStep = step
	}
	d.FormData = d.FormData.Merge(data)
	d.Version++
	d.LastSavedAt = now
}

// Save validates and applies a save in one call.
func (d *Draft) Save(step Step, data FormData, now time.Time) error {
	if err := d.CanSave(); err != nil {
		return err
	}
	d.ApplySave(step, data, now)
	return nil
}

// ResetStep supports explicit backward navigation. Unlike saves, navigation
// may move the resume point back so the wizard reopens where the user left.
func (d *Draft) ResetStep(step Step) error {
	if err := d.CanSave(); err != nil {
		return err
	}
	if step < Step1Info || step > Step5Preview {
		return dErrors.New(dErrors.CodeInvalidInput, "step out of range")
	}
	d.CurrentStep = step
	return nil
}

// CanFinalize checks whether the draft can be consumed.
func (d *Draft) CanFinalize() error {
	if d.Status == DraftStatusFinalized {
		return dErrors.New(dErrors.CodeInvariantViolation, "draft has already been finalized")
	}
	return nil
}

// ApplyFinalized consumes the draft. Terminal: no transitions out.
func (d *Draft) ApplyFinalized(now time.Time) {
	d.Status = DraftStatusFinalized
	d.CurrentStep = Step5Preview
	d.LastSavedAt = now
}

// DraftStatus is the lifecycle state of a draft.
type DraftStatus string

const (
	DraftStatusOpen      DraftStatus = "open"
	DraftStatusFinalized DraftStatus = "finalized"
)

func (s DraftStatus) Valid() bool {
	return s == DraftStatusOpen || s == DraftStatusFinalized
}
