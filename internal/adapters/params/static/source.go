// Package static adapts an in-memory map (flags, env, config file values
// already merged by viper) to the ParameterSource port.
package static

import "context"

type Source struct {
	name   string
	values map[string]string
}

func NewSource(name string, values map[string]string) *Source {
	return &Source{name: name, values: values}
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) Load(_ context.Context) (map[string]string, error) {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}
