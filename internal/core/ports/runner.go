package ports

import "context"

type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CommandRunner executes a host command and reports its exit code. A
// non-zero exit is not an error return; the error is reserved for the
// command failing to start or the context expiring.
//
//go:generate mockery --name CommandRunner --output ./mocks --outpkg mocks --case underscore
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
}
