package ports

import (
	"context"

	"github.com/hostinit/hostinit/internal/core/domain"
)

//go:generate mockery --name ConvergenceEngine --output ./mocks --outpkg mocks --case underscore
type ConvergenceEngine interface {
	Run(ctx context.Context) (domain.ConvergenceResult, error)
}
