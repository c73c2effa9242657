// Package module provides the corpus builder module
package module

import (
	"userfreqs/internal/modkit"

	"userfreqs/internal/core/aggregate"
	"userfreqs/internal/core/tokenize"
	"userfreqs/internal/services/build/domain"
	"userfreqs/internal/services/build/guardrails"
	"userfreqs/internal/services/build/ingest"
	"userfreqs/internal/services/build/service"
)

// Ports defines the builder module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Adapters replaces the default adapters; nil fields keep the defaults.
// Pass it with modkit.WithPorts.
type Adapters struct {
	Sources domain.SourceFactory
	Decoder domain.RecordDecoder
	Reducer domain.BatchReducer
	Store   domain.CorpusStore
}

// Module implements the builder module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the builder module from deps.Cfg (CORE_BUILD_*).
// Invalid options are returned as an InvalidArgument error.
func New(deps modkit.Deps, mods ...modkit.Option) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	ad, _ := modkit.Build(mods...).Ports.(Adapters)
	if ad.Sources == nil {
		ad.Sources = ingest.NewSourceFactory(opts.MaxLineBytes)
	}
	if ad.Decoder == nil {
		ad.Decoder = ingest.NewDecoder()
	}
	if ad.Reducer == nil {
		ad.Reducer = aggregate.New(opts.Workers, tokenize.New())
	}
	if ad.Store == nil {
		ad.Store = ingest.NewStore(opts.Level)
	}

	svc := service.New(
		ad.Sources, ad.Decoder, ad.Reducer, ad.Store,
		service.Config{
			RunID:               deps.RunID,
			BatchSize:           opts.BatchSize,
			ErrorBudget:         opts.ErrorBudget,
			InputExt:            opts.InputExt,
			OutputSuffix:        opts.OutputSuffix,
			ContinueOnOpenError: opts.ContinueOnOpenError,
			Timeouts: guardrails.Timeouts{
				File:   opts.FileTimeout,
				Read:   opts.ReadTimeout,
				Encode: opts.EncodeTimeout,
			},
		},
	)

	return &Module{deps: deps, opts: opts, ports: Ports{Runner: svc}}, nil
}

// Name returns the module name
func (m *Module) Name() string { return "build" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Options returns the resolved configuration
func (m *Module) Options() Options { return m.opts }
