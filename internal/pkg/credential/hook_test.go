package credential

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHooks(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := &Record{ID: 7, ObjectRef: "user-1", Type: TypeService, Algorithm: "bcrypt", Salt: "s", Hash: []byte("h")}
	ev := rec.Event(ActionSet, "admin", at)

	assert.Equal(t, ChangeEvent{
		RecordID: 7, ObjectRef: "user-1", Type: TypeService,
		Action: ActionSet, Algorithm: "bcrypt", Actor: "admin", At: at,
	}, ev)

	veto := errors.New("veto")
	var calls []string
	h := Hooks{
		BeforeSave: []Hook{
			func(context.Context, ChangeEvent) error { calls = append(calls, "b1"); return veto },
			func(context.Context, ChangeEvent) error { calls = append(calls, "b2"); return nil },
		},
		AfterSave: []Hook{
			func(context.Context, ChangeEvent) error { calls = append(calls, "a1"); return errors.New("a1") },
			func(context.Context, ChangeEvent) error { calls = append(calls, "a2"); return nil },
		},
	}

	assert.ErrorIs(t, h.RunBeforeSave(context.Background(), ev), veto)
	assert.EqualError(t, h.RunAfterSave(context.Background(), ev), "a1")
	assert.Equal(t, []string{"b1", "a1", "a2"}, calls)

	assert.NoError(t, Hooks{}.RunBeforeSave(context.Background(), ev))
	assert.NoError(t, Hooks{}.RunAfterSave(context.Background(), ev))
}
