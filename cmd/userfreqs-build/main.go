package main

import (
	"context"
	"os"
	"strconv"

	"userfreqs/internal/core/version"
	"userfreqs/internal/modkit"
	"userfreqs/internal/modkit/module"
	"userfreqs/internal/platform/config"
	perr "userfreqs/internal/platform/errors"
	"userfreqs/internal/platform/logger"

	buildmod "userfreqs/internal/services/build/module"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

// flagEnv surfaces explicitly set int flags to the CORE_BUILD_* keys the module reads
var flagEnv = map[string]string{
	"workers": "CORE_BUILD_WORKERS",
	"batch":   "CORE_BUILD_BATCH_SIZE",
	"level":   "CORE_BUILD_LEVEL",
	"budget":  "CORE_BUILD_ERROR_BUDGET",
}

func main() {
	l := logger.Get()

	app := &cli.App{
		Name:      "userfreqs-build",
		Usage:     "build per-author word frequency corpora from zstd comment archives",
		ArgsUsage: "<dir>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "workers", Usage: "aggregation workers (default GOMAXPROCS)"},
			&cli.IntFlag{Name: "batch", Usage: "records per batch (default 10000)"},
			&cli.IntFlag{Name: "level", Usage: "zstd level for output files (default 10)"},
			&cli.IntFlag{Name: "budget", Usage: "soft record failures tolerated per file (default 10)"},
			&cli.BoolFlag{Name: "summary", Usage: "print the run summary as YAML on stdout"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		l.Fatal().Err(err).Msg("build failed")
	}
}

func run(c *cli.Context) error {
	l := logger.Get()

	dir := c.Args().First()
	if dir == "" {
		return perr.Startupf("usage: userfreqs-build [flags] <dir>")
	}
	for name, key := range flagEnv {
		if c.IsSet(name) {
			mustSetEnv(key, strconv.Itoa(c.Int(name)))
		}
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeStartup, "run id")
	}
	info := version.Info(c.App.Name)
	l.Info().
		Str("run_id", runID.String()).
		Str("version", info.Version).
		Str("commit", info.Commit).
		Str("codec", info.Codec).
		Msg("starting")

	deps := modkit.Deps{Cfg: config.New(), Log: *l, RunID: runID.String()}

	bm, err := buildmod.New(deps)
	if err != nil {
		return err
	}
	if err := module.Register(bm); err != nil {
		return err
	}

	opts := bm.Options()
	l.Info().
		Int("workers", opts.Workers).
		Int("batch_size", opts.BatchSize).
		Int("error_budget", opts.ErrorBudget).
		Int("level", opts.Level).
		Msg("build options")

	ports, err := module.PortsAs[buildmod.Ports](bm.Name())
	if err != nil {
		return err
	}
	sum, err := ports.Runner.RunDir(context.Background(), dir)
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		l.Warn().Int("failed", sum.Failed).Int("files", sum.Files).Msg("some files failed; rerun to retry them")
	}
	if !c.Bool("summary") {
		return nil
	}
	enc := yaml.NewEncoder(c.App.Writer)
	if err := enc.Encode(sum); err != nil {
		return err
	}
	return enc.Close()
}
