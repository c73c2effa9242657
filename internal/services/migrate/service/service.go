// Package service provides the corpus migrator implementation
package service

import (
	"bufio"
	"context"
	"path/filepath"
	"time"

	"userfreqs/internal/adapters/fsdir"
	"userfreqs/internal/core/codec"
	perr "userfreqs/internal/platform/errors"
	"userfreqs/internal/platform/logger"
	"userfreqs/internal/platform/progress"
	"userfreqs/internal/services/migrate/domain"
)

const (
	logStep  = 100_000 // authors
	sniffBuf = 64 << 10
)

// Config holds configuration options for the migrator service
type Config struct {
	RunID string

	From codec.Version // VersionAuto sniffs each file

	InputExt     string // e.g. ".freqs"
	OutputSuffix string // e.g. ".users.freqs.migrated"

	// ContinueOnOpenError makes open/create failures skip the file instead of ending the run
	ContinueOnOpenError bool
}

// Service implements the migrator
type Service struct {
	Source domain.CorpusSource
	Store  domain.CorpusStore
	Cfg    Config
}

// New constructs the migrator service
func New(src domain.CorpusSource, store domain.CorpusStore, cfg Config) *Service {
	if src == nil || store == nil {
		panic("migrate.Service requires a source and a store")
	}
	return &Service{Source: src, Store: store, Cfg: cfg}
}

// RunDir implements domain.RunnerPort. Files are processed in name order and a
// file whose output exists is skipped. A file that fails to decode leaves no
// output and the run moves on.
func (s *Service) RunDir(ctx context.Context, dir string) (domain.Summary, error) {
	ctx = logger.WithRun(ctx, s.Cfg.RunID, "")
	log := logger.C(ctx)

	var sum domain.Summary
	files, err := fsdir.List(dir, s.Cfg.InputExt)
	if err != nil {
		return sum, err
	}
	log.Info().Str("dir", dir).Int("files", len(files)).Str("from", s.Cfg.From.String()).Msg("migrate: starting")

	for _, p := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		rep, err := s.RunFile(ctx, p)
		sum.Add(rep)
		if err == nil {
			continue
		}
		switch {
		case perr.IsCode(err, perr.ErrorCodeOpen):
			if !s.Cfg.ContinueOnOpenError {
				return sum, err
			}
		case !perr.IsFileScoped(err):
			return sum, err
		}
	}

	log.Info().
		Int("files", sum.Files).
		Int("skipped", sum.Skipped).
		Int("done", sum.Done).
		Int("failed", sum.Failed).
		Uint64("authors", sum.Authors).
		Msg("migrate: finished")
	return sum, nil
}

// RunFile implements domain.RunnerPort for a single corpus file
func (s *Service) RunFile(ctx context.Context, path string) (rep domain.FileReport, retErr error) {
	out := fsdir.OutputPath(path, s.Cfg.OutputSuffix)
	rep = domain.FileReport{Path: path, Output: out, From: s.Cfg.From, To: codec.Current}

	ctx = logger.WithRun(ctx, s.Cfg.RunID, filepath.Base(path))
	log := logger.C(ctx)

	if s.Store.Exists(out) {
		rep.Skipped = true
		log.Debug().Str("output", out).Msg("migrate: output exists; skipping")
		return rep, nil
	}

	startWall := time.Now()
	defer func() {
		rep.ElapsedMS = int(time.Since(startWall).Milliseconds())
		if retErr != nil {
			rep.ErrText = retErr.Error()
		}
		ev := log.Info()
		if retErr != nil {
			ev = log.Error().Err(retErr)
		}
		ev.Str("status", rep.Status()).
			Str("from", rep.From.String()).
			Str("to", rep.To.String()).
			Uint64("authors", rep.Authors).
			Uint64("words", rep.Words).
			Int64("bytes_encoded", rep.BytesWritten).
			Int("decode_ms", rep.DecodeMS).
			Int("encode_ms", rep.EncodeMS).
			Int("elapsed_ms", rep.ElapsedMS).
			Msg("migrate: file finished")
	}()

	src, err := s.Source.Open(path)
	if err != nil {
		return rep, err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("migrate: closing source")
		}
	}()

	sink, err := s.Store.Create(out)
	if err != nil {
		return rep, err
	}
	closed := false
	defer func() {
		if !closed {
			if aerr := sink.Abort(); aerr != nil {
				log.Error().Err(aerr).Msg("migrate: aborting output")
			}
		}
	}()

	// decode
	t0 := time.Now()
	br := bufio.NewReaderSize(src, sniffBuf)
	if rep.From == codec.VersionAuto {
		v, err := codec.Sniff(br)
		if err != nil {
			return rep, perr.WithOp(err, "decode")
		}
		rep.From = v
	}
	dp := progress.New(log, "decode", "authors", progress.WithFallbackStep(logStep))
	corpus, err := codec.Decode(br, codec.WithVersion(rep.From), codec.WithObserver(codec.Observe(dp)))
	rep.DecodeMS = int(time.Since(t0).Milliseconds())
	if err != nil {
		return rep, err
	}
	dp.Done()

	// encode
	t1 := time.Now()
	ep := progress.New(log, "encode", "authors", progress.WithFallbackStep(logStep))
	st, err := codec.Encode(sink, corpus, codec.WithVersion(rep.To), codec.WithObserver(codec.Observe(ep)))
	rep.Authors, rep.Words, rep.BytesWritten = st.Authors, st.Words, st.Bytes
	rep.EncodeMS = int(time.Since(t1).Milliseconds())
	if err != nil {
		// finalize what was written; only a failed finalize discards it
		closed = true
		if cerr := sink.Commit(); cerr != nil {
			log.Error().Err(cerr).Msg("migrate: finalizing output after encode failure")
			_ = sink.Abort()
		}
		return rep, err
	}
	ep.Done()

	closed = true
	if err := sink.Commit(); err != nil {
		return rep, err
	}
	rep.Done = true
	return rep, nil
}
