package usecase

import (
	"context"

	"github.com/shandysiswandi/credvault/internal/pkg/hash"
)

type HasherStatusOutput struct {
	Hashers []hash.Info
}

func (s *Usecase) HasherStatus(ctx context.Context) (*HasherStatusOutput, error) {
	_, span := s.startSpan(ctx, "HasherStatus")
	defer span.End()

	return &HasherStatusOutput{Hashers: s.registry.Status()}, nil
}
