package ports

import (
	"context"

	"github.com/hostinit/hostinit/internal/core/domain"
)

// PlatformInspector answers read-only questions about the target region
// and the deployed host. It never mutates platform state; resource
// creation belongs to the external provisioning engine.
type PlatformInspector interface {
	Region() string
	ZoneInRegion(ctx context.Context, zone string) (bool, error)
	InstanceTypeOffered(ctx context.Context, instanceType string) (bool, error)
	FindWebInstance(ctx context.Context, nameTag string) (*domain.HostOutputs, error)
}
