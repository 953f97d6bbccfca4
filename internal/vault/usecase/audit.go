package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/credvault/internal/pkg/credential"
	"github.com/shandysiswandi/credvault/internal/pkg/instrument"
	"github.com/shandysiswandi/credvault/internal/vault/entity"
)

// publishChange is the after-save hook. Publishing happens off the request
// path; a full goroutine pool drops the event with a warning.
func (s *Usecase) publishChange(ctx context.Context, ev credential.ChangeEvent) error {
	msg := entity.ChangeMessage{
		EventID:       s.oid.Generate(),
		Action:        string(ev.Action),
		CredentialID:  ev.RecordID,
		ObjectRef:     ev.ObjectRef,
		Type:          ev.Type.String(),
		Algorithm:     ev.Algorithm,
		Actor:         ev.Actor,
		CorrelationID: instrument.GetCorrelationID(ctx),
		OccurredAt:    ev.At,
	}

	accepted := s.goroutine.Go(ctx, func(ctx context.Context) error {
		if err := s.repoMessaging.PublishCredentialChange(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "failed to publish credential change", "event_id", msg.EventID, "action", msg.Action, "error", err)
			return err
		}
		return nil
	})
	if !accepted {
		slog.WarnContext(ctx, "credential change event dropped", "event_id", msg.EventID, "action", msg.Action)
	}

	return nil
}
