package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/majupersonalizados/briefing/internal/metrics"
	"github.com/majupersonalizados/briefing/internal/model"
	"github.com/majupersonalizados/briefing/internal/repository"
)

type BriefingService struct {
	briefingRepository repository.BriefingRepository
	notifier           Notifier
}

func NewBriefingService(briefingRepository repository.BriefingRepository, notifier Notifier) *BriefingService {
	return &BriefingService{
		briefingRepository: briefingRepository,
		notifier:           notifier,
	}
}

// Submit stores a frozen copy of the draft and then notifies staff once.
// A store failure is returned and nothing is sent. A notification failure
// is logged only: the record stays stored and the submission counts as done.
func (s *BriefingService) Submit(ctx context.Context, draft *model.Briefing) (*model.Briefing, error) {
	briefing := draft.Clone()

	err := s.briefingRepository.Create(ctx, briefing)
	metrics.Submissions.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("failed to store briefing: %w", err)
	}

	slog.Info("briefing stored", "id", briefing.ID, "company", briefing.CompanyName, "files", len(briefing.VisualIdentityFiles))

	err = s.notifier.NotifyBriefing(ctx, briefing)
	if err != nil {
		slog.Error("briefing notification failed", "error", err, "id", briefing.ID)
	}

	return briefing, nil
}

// List returns every briefing, newest first.
func (s *BriefingService) List(ctx context.Context) ([]*model.Briefing, error) {
	return s.briefingRepository.All(ctx)
}

func (s *BriefingService) ByID(ctx context.Context, id int64) (*model.Briefing, error) {
	return s.briefingRepository.ByID(ctx, id)
}
