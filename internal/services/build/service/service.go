// Package service provides the corpus builder implementation
package service

import (
	"context"
	"path/filepath"
	"time"

	"userfreqs/internal/adapters/fsdir"
	"userfreqs/internal/core/aggregate"
	"userfreqs/internal/core/codec"
	"userfreqs/internal/core/freq"
	perr "userfreqs/internal/platform/errors"
	"userfreqs/internal/platform/logger"
	"userfreqs/internal/platform/progress"
	"userfreqs/internal/services/build/domain"
	"userfreqs/internal/services/build/guardrails"
)

const (
	// DefaultBatchSize is the number of records reduced together
	DefaultBatchSize = 10000

	readLogStep   = 256 << 20 // bytes, used when the archive declares no size
	encodeLogStep = 100_000   // authors
)

// Config holds configuration options for the builder service
type Config struct {
	RunID string

	BatchSize   int // records per batch; <=0 -> DefaultBatchSize
	ErrorBudget int // soft record failures tolerated per file

	InputExt     string // e.g. ".zst"
	OutputSuffix string // e.g. ".users.freqs"

	// ContinueOnOpenError makes open/create failures skip the file instead of ending the run
	ContinueOnOpenError bool

	Timeouts guardrails.Timeouts
}

// Service implements the builder
type Service struct {
	Sources domain.SourceFactory
	Decoder domain.RecordDecoder
	Reducer domain.BatchReducer
	Store   domain.CorpusStore
	Cfg     Config
}

// New constructs the builder service
func New(
	src domain.SourceFactory,
	dec domain.RecordDecoder,
	red domain.BatchReducer,
	store domain.CorpusStore,
	cfg Config,
) *Service {
	if src == nil || dec == nil || red == nil || store == nil {
		panic("build.Service requires a source factory, decoder, reducer and store")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Service{Sources: src, Decoder: dec, Reducer: red, Store: store, Cfg: cfg}
}

// RunDir implements domain.RunnerPort. Files are processed in name order; a file whose
// output already exists is skipped. Per-file failures are logged and counted, and only
// an unreadable directory, a cancelled ctx or (unless configured otherwise) an open
// failure ends the run early.
func (s *Service) RunDir(ctx context.Context, dir string) (domain.Summary, error) {
	ctx = logger.WithRun(ctx, s.Cfg.RunID, "")
	log := logger.C(ctx)

	var sum domain.Summary
	files, err := fsdir.List(dir, s.Cfg.InputExt)
	if err != nil {
		return sum, err
	}
	log.Info().Str("dir", dir).Int("files", len(files)).Msg("build: starting")

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
		Int("partial", sum.Partial).
		Int("failed", sum.Failed).
		Int("records", sum.Records).
		Uint64("authors", sum.Authors).
		Msg("build: finished")
	return sum, nil
}

// RunFile implements domain.RunnerPort for a single archive
func (s *Service) RunFile(ctx context.Context, path string) (rep domain.FileReport, retErr error) {
	out := fsdir.OutputPath(path, s.Cfg.OutputSuffix)
	rep = domain.FileReport{Path: path, Output: out}

	ctx = logger.WithRun(ctx, s.Cfg.RunID, filepath.Base(path))
	log := logger.C(ctx)

	if s.Store.Exists(out) {
		rep.Skipped = true
		log.Debug().Str("output", out).Msg("build: output exists; skipping")
		return rep, nil
	}

	fileCtx, cancel := guardrails.WithFile(ctx, s.Cfg.Timeouts)
	defer cancel()

	startWall := time.Now()
	defer func() {
		rep.ElapsedMS = int(time.Since(startWall).Milliseconds())
		if retErr != nil && rep.ErrText == "" {
			rep.ErrText = retErr.Error()
		}
		ev := log.Info()
		if retErr != nil {
			ev = log.Error().Err(retErr)
		}
		if rep.State >= domain.StateAborted {
			ev = ev.Str("ending", rep.Ending.String())
		}
		ev.Str("status", rep.Status()).
			Str("state", rep.State.String()).
			Int("records", rep.Records).
			Int("malformed", rep.Malformed).
			Int("budget_used", rep.BudgetUsed).
			Int("batches", rep.Batches).
			Int64("bytes_uncompressed", rep.BytesRead).
			Uint64("authors", rep.Authors).
			Uint64("words", rep.Words).
			Int64("bytes_encoded", rep.BytesWritten).
			Int("read_ms", rep.ReadMS).
			Int("encode_ms", rep.EncodeMS).
			Int("elapsed_ms", rep.ElapsedMS).
			Msg("build: file finished")
	}()

	// Opening
	rep.State = domain.StateOpening
	src, err := s.Sources.Open(path)
	if err != nil {
		return rep, err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("build: closing source")
		}
	}()
	if size, ok := src.DeclaredSize(); ok {
		rep.DeclaredSize = size
		log.Info().
			Uint64("declared_bytes", size).
			Float64("declared_gib", float64(size)/(1<<30)).
			Msg("build: processing archive")
	}

	sink, err := s.Store.Create(out)
	if err != nil {
		return rep, err
	}
	closed := false
	defer func() {
		if !closed {
			_ = sink.Abort()
		}
	}()

	// Reading
	rep.State = domain.StateReading
	t0 := time.Now()
	corpus, ending, rerr := s.read(fileCtx, src, &rep)
	rep.ReadMS = int(time.Since(t0).Milliseconds())
	rep.State, rep.Ending = ending, ending
	switch ending {
	case domain.StateAborted:
		rep.ErrText = rerr.Error()
		log.Error().Err(rerr).Int("records", rep.Records).Msg("build: read aborted; writing partial corpus")
	case domain.StateBudgetExceeded:
		rep.ErrText = rerr.Error()
		log.Warn().Err(rerr).Int("records", rep.Records).Msg("build: error budget exceeded; writing partial corpus")
	}

	// Encoding
	rep.State = domain.StateEncoding
	t1 := time.Now()
	encCtx, encCancel := guardrails.ForEncode(fileCtx, s.Cfg.Timeouts)
	defer encCancel()
	pr := progress.New(log, "encode", "authors", progress.WithFallbackStep(encodeLogStep))
	st, err := codec.Encode(guardrails.Writer(encCtx, sink), corpus, codec.WithObserver(codec.Observe(pr)))
	rep.Authors, rep.Words, rep.BytesWritten = st.Authors, st.Words, st.Bytes
	rep.EncodeMS = int(time.Since(t1).Milliseconds())
	if err != nil {
		// the container is still finalized; a failed finalize discards it
		closed = true
		if cerr := sink.Commit(); cerr != nil {
			log.Error().Err(cerr).Msg("build: finalizing output after encode failure")
			_ = sink.Abort()
		}
		rep.ErrText = ""
		return rep, err
	}
	pr.Done()

	closed = true
	if err := sink.Commit(); err != nil {
		rep.ErrText = ""
		return rep, err
	}
	rep.State = domain.StateDone
	return rep, nil
}

// read consumes src in batches until it is exhausted, fails, or the error budget runs out.
// Records accepted before the stop are always reduced into the returned corpus.
func (s *Service) read(ctx context.Context, src domain.LineSource, rep *domain.FileReport) (freq.Corpus, domain.State, error) {
	readCtx, cancel := guardrails.ForRead(ctx, s.Cfg.Timeouts)
	defer cancel()

	budget := aggregate.NewBudget(s.Cfg.ErrorBudget)
	pr := progress.New(logger.C(ctx), "read", "bytes", progress.WithFallbackStep(readLogStep))
	if size, ok := src.DeclaredSize(); ok {
		pr.SetTotal(size)
	}

	corpus := freq.New()
	items := make([]aggregate.Item, 0, s.Cfg.BatchSize)
	var buf []byte

	merge := func() error {
		if len(items) == 0 {
			return nil
		}
		// the batch is bounded work; finish it even when the read deadline has passed
		part, err := s.Reducer.Reduce(context.WithoutCancel(readCtx), items)
		items = items[:0]
		if err != nil {
			return perr.Wrap(err, perr.ErrorCodeIO, "build: reduce batch")
		}
		corpus.Merge(part)
		rep.Batches++
		_, n := src.Stats()
		rep.BytesRead = n
		pr.Update(uint64(n))
		return nil
	}
	end := func(st domain.State, cause error) (freq.Corpus, domain.State, error) {
		if err := merge(); err != nil && cause == nil {
			st, cause = domain.StateAborted, err
		}
		_, rep.BytesRead = src.Stats()
		rep.BudgetUsed = budget.Used()
		pr.Done()
		return corpus, st, cause
	}

	for {
		if err := readCtx.Err(); err != nil {
			return end(domain.StateAborted, perr.Wrap(err, perr.ErrorCodeIO, "build: read deadline"))
		}
		for len(items) < s.Cfg.BatchSize {
			line, err := src.NextLine(buf)
			if err != nil {
				return end(domain.StateAborted, err)
			}
			if len(line) == 0 {
				// a zero-length read is the end-of-input signal; it still costs one budget unit
				budget.Charge()
				return end(domain.StateExhausted, nil)
			}
			buf = line

			rec, err := s.Decoder.Decode(line)
			if err != nil {
				rep.Malformed++
				if budget.Charge() {
					return end(domain.StateBudgetExceeded, perr.Wrapf(err, perr.ErrorCodeBudget,
						"build: %d soft failures exceed budget of %d", budget.Used(), budget.Limit()))
				}
				continue
			}
			items = append(items, aggregate.Item{Author: rec.Author, Body: rec.Body})
			rep.Records++
		}
		if err := merge(); err != nil {
			return end(domain.StateAborted, err)
		}
	}
}
