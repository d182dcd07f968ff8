package ports

import "context"

// ParameterSource supplies raw deployment parameters as a flat
// name-to-string mapping. Sources are merged by the caller in precedence
// order before resolution.
type ParameterSource interface {
	Name() string
	Load(ctx context.Context) (map[string]string, error)
}
