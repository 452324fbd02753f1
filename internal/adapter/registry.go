package adapter

import (
	"sort"

	"github.com/felixgeelhaar/lintgate/internal/config"
	"github.com/felixgeelhaar/lintgate/internal/errors"
)

// Factory builds an adapter from a tool config.
type Factory func(tool config.Tool) (Adapter, error)

// registry maps adapter kinds to constructors. New analyzers plug in
// here; the aggregator and the policy engine only see the Adapter
// interface.
var registry = map[string]Factory{
	"pylint":  func(t config.Tool) (Adapter, error) { return NewPylint(t), nil },
	"flake8":  func(t config.Tool) (Adapter, error) { return NewFlake8(t), nil },
	"bandit":  func(t config.Tool) (Adapter, error) { return NewBandit(t), nil },
	"mypy":    func(t config.Tool) (Adapter, error) { return NewMypy(t), nil },
	"semgrep": func(t config.Tool) (Adapter, error) { return NewSemgrep(t), nil },
	"regex":   func(t config.Tool) (Adapter, error) { return NewRegex(t) },
}

// New builds the adapter for a tool config
func New(tool config.Tool) (Adapter, error) {
	factory, ok := registry[tool.Kind]
	if !ok {
		return nil, errors.NewToolUnknownError(tool.Name, tool.Kind, Kinds())
	}
	return factory(tool)
}

// Kinds returns the registered adapter kinds in sorted order
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
