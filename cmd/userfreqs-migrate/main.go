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

	migratemod "userfreqs/internal/services/migrate/module"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	l := logger.Get()

	app := &cli.App{
		Name:      "userfreqs-migrate",
		Usage:     "re-encode stored corpora in the current format",
		ArgsUsage: "<dir>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Usage: "source corpus format: auto | v1 | v2 (default auto)"},
			&cli.IntFlag{Name: "level", Usage: "zstd level for output files (default 10)"},
			&cli.BoolFlag{Name: "summary", Usage: "print the run summary as YAML on stdout"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		l.Fatal().Err(err).Msg("migrate failed")
	}
}

func run(c *cli.Context) error {
	l := logger.Get()

	dir := c.Args().First()
	if dir == "" {
		return perr.Startupf("usage: userfreqs-migrate [flags] <dir>")
	}

	// Surface flags to the module, which reads CORE_MIGRATE_*
	mustSetEnv("CORE_MIGRATE_FROM", c.String("from"))
	if c.IsSet("level") {
		mustSetEnv("CORE_MIGRATE_LEVEL", strconv.Itoa(c.Int("level")))
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

	mm, err := migratemod.New(deps)
	if err != nil {
		return err
	}
	if err := module.Register(mm); err != nil {
		return err
	}

	ports, err := module.PortsAs[migratemod.Ports](mm.Name())
	if err != nil {
		return err
	}
	sum, err := ports.Runner.RunDir(context.Background(), dir)
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		l.Warn().Int("failed", sum.Failed).Int("files", sum.Files).Msg("some files failed to migrate")
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
