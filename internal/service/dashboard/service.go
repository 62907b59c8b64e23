// Package dashboard assembles learner progress snapshots and projects
// them through the privacy policies before they leave the service.
// Handlers never see a raw snapshot; the only outputs are projected
// views.
package dashboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/domain"
	"github.com/readpath/readpath-api/internal/domain/privacy"
)

// ComprehensionScorer turns a raw checkpoint pass rate into the
// comprehension score surfaced on dashboards. Injectable so the scoring
// curve can change without touching snapshot assembly.
type ComprehensionScorer interface {
	Score(passRate float64) float64
}

// DashboardService provides privacy-projected progress views.
type DashboardService interface {
	// GetFamilyView assembles the learner's snapshot and projects it
	// under the household's privacy mode.
	GetFamilyView(
		ctx context.Context,
		learnerID uuid.UUID,
		mode domain.FamilyPrivacyMode,
	) (*privacy.FamilyView, error)

	// GetClassroomView assembles the learner's snapshot and projects it
	// under the classroom's privacy mode.
	GetClassroomView(
		ctx context.Context,
		learnerID uuid.UUID,
		mode domain.ClassroomPrivacyMode,
	) (*privacy.ClassroomView, error)
}

// ServiceError wraps errors from the dashboard service with operation
// context.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
