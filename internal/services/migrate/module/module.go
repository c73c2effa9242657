// Package module provides the corpus migrator module
package module

import (
	"userfreqs/internal/modkit"

	"userfreqs/internal/services/migrate/domain"
	"userfreqs/internal/services/migrate/ingest"
	"userfreqs/internal/services/migrate/service"
)

// Ports defines the migrator module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Adapters replaces the default adapters; nil fields keep the defaults.
// Pass it with modkit.WithPorts.
type Adapters struct {
	Source domain.CorpusSource
	Store  domain.CorpusStore
}

// Module implements the migrator module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the migrator module from deps.Cfg (CORE_MIGRATE_*)
func New(deps modkit.Deps, mods ...modkit.Option) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	ad, _ := modkit.Build(mods...).Ports.(Adapters)
	if ad.Source == nil {
		ad.Source = ingest.NewSource()
	}
	if ad.Store == nil {
		ad.Store = ingest.NewStore(opts.Level)
	}

	svc := service.New(ad.Source, ad.Store, service.Config{
		RunID:               deps.RunID,
		From:                opts.Version(),
		InputExt:            opts.InputExt,
		OutputSuffix:        opts.OutputSuffix,
		ContinueOnOpenError: opts.ContinueOnOpenError,
	})

	return &Module{deps: deps, opts: opts, ports: Ports{Runner: svc}}, nil
}

// Name returns the module name
func (m *Module) Name() string { return "migrate" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Options returns the resolved configuration
func (m *Module) Options() Options { return m.opts }
