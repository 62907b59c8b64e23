package dashboard

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/domain"
	"github.com/readpath/readpath-api/internal/domain/privacy"
	"github.com/readpath/readpath-api/internal/platform/logger"
	"github.com/readpath/readpath-api/internal/store"
)

// linearScorer is the default comprehension scorer: the pass rate
// itself, clamped to [0,1].
type linearScorer struct{}

func (linearScorer) Score(passRate float64) float64 {
	if passRate < 0 {
		return 0
	}
	if passRate > 1 {
		return 1
	}
	return passRate
}

// NewLinearScorer returns the default pass-through comprehension scorer.
func NewLinearScorer() ComprehensionScorer {
	return linearScorer{}
}

// Verify interface compliance at compile time
var _ DashboardService = (*dashboardServiceImpl)(nil)

// dashboardServiceImpl implements the DashboardService interface.
type dashboardServiceImpl struct {
	stats  store.StatsStore
	scorer ComprehensionScorer
	logger *slog.Logger
}

// NewDashboardService creates a new DashboardService implementation.
// A nil scorer falls back to the linear default.
func NewDashboardService(
	stats store.StatsStore,
	scorer ComprehensionScorer,
	logger *slog.Logger,
) DashboardService {
	if stats == nil {
		panic("stats cannot be nil")
	}

	if scorer == nil {
		scorer = NewLinearScorer()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &dashboardServiceImpl{
		stats:  stats,
		scorer: scorer,
		logger: logger.With(slog.String("component", "dashboard_service")),
	}
}

// GetFamilyView implements DashboardService.GetFamilyView.
func (s *dashboardServiceImpl) GetFamilyView(
	ctx context.Context,
	learnerID uuid.UUID,
	mode domain.FamilyPrivacyMode,
) (*privacy.FamilyView, error) {
	snapshot, err := s.assemble(ctx, learnerID, "get_family_view")
	if err != nil {
		return nil, err
	}
	return privacy.ProjectFamily(snapshot, mode)
}

// GetClassroomView implements DashboardService.GetClassroomView.
func (s *dashboardServiceImpl) GetClassroomView(
	ctx context.Context,
	learnerID uuid.UUID,
	mode domain.ClassroomPrivacyMode,
) (*privacy.ClassroomView, error) {
	snapshot, err := s.assemble(ctx, learnerID, "get_classroom_view")
	if err != nil {
		return nil, err
	}
	return privacy.ProjectClassroom(snapshot, mode)
}

// assemble fetches the raw snapshot and applies the comprehension
// scoring curve.
func (s *dashboardServiceImpl) assemble(
	ctx context.Context,
	learnerID uuid.UUID,
	operation string,
) (*domain.DashboardSnapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if learnerID == uuid.Nil {
		return nil, domain.ErrInvalidID
	}

	snapshot, err := s.stats.GetSnapshot(ctx, learnerID)
	if err != nil {
		log.Error("failed to assemble dashboard snapshot",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, &ServiceError{
			Operation: operation,
			Message:   "failed to assemble snapshot",
			Err:       err,
		}
	}

	snapshot.ComprehensionAvg = s.scorer.Score(snapshot.ComprehensionAvg)
	return snapshot, nil
}
