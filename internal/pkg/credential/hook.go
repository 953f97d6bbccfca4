package credential

import (
	"context"
	"errors"
	"time"
)

// Action names a persisted change to a credential.
type Action string

const (
	ActionSet      Action = "credential.set"
	ActionUpgraded Action = "credential.upgraded"
	ActionRevoked  Action = "credential.revoked"
	ActionDeleted  Action = "credential.deleted"
)

// ChangeEvent describes a credential change for audit. It never carries salt or hash.
type ChangeEvent struct {
	RecordID  int64
	ObjectRef string
	Type      Type
	Action    Action
	Algorithm string
	Actor     string
	At        time.Time
}

// Event builds the change event for r.
func (r *Record) Event(action Action, actor string, at time.Time) ChangeEvent {
	return ChangeEvent{
		RecordID:  r.ID,
		ObjectRef: r.ObjectRef,
		Type:      r.Type,
		Action:    action,
		Algorithm: r.Algorithm,
		Actor:     actor,
		At:        at,
	}
}

// Hook observes a change.
type Hook func(ctx context.Context, ev ChangeEvent) error

// Hooks run around a save. A BeforeSave error vetoes the save; AfterSave
// hooks all run and their errors are joined.
type Hooks struct {
	BeforeSave []Hook
	AfterSave  []Hook
}

func (h Hooks) RunBeforeSave(ctx context.Context, ev ChangeEvent) error {
	for _, fn := range h.BeforeSave {
		if err := fn(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (h Hooks) RunAfterSave(ctx context.Context, ev ChangeEvent) error {
	var errs []error
	for _, fn := range h.AfterSave {
		errs = append(errs, fn(ctx, ev))
	}
	return errors.Join(errs...)
}
