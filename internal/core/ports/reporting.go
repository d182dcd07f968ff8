package ports

import (
	"context"

	"github.com/hostinit/hostinit/internal/core/domain"
)

type Reporter interface {
	// ReportResolution prints either the resolved deployment or every
	// field error, whichever is non-empty.
	ReportResolution(ctx context.Context, dep *domain.Deployment, fieldErrs []domain.FieldError) error
	ReportConvergence(ctx context.Context, result domain.ConvergenceResult) error
	ReportOutputs(ctx context.Context, outputs domain.HostOutputs) error
}
