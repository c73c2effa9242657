package module

import (
	"runtime"
	"time"

	"userfreqs/internal/adapters/ingest/archive"
	"userfreqs/internal/adapters/store/freqfile"
	"userfreqs/internal/platform/config"
	"userfreqs/internal/platform/validate"
	"userfreqs/internal/services/build/service"
)

// Options holds configuration options for the builder
type Options struct {
	BatchSize    int    `json:"batch_size" validate:"min=1"`
	Workers      int    `json:"workers" validate:"min=1,max=1024"`
	ErrorBudget  int    `json:"error_budget" validate:"min=0"`
	Level        int    `json:"level" validate:"min=1,max=22"`
	MaxLineBytes int    `json:"max_line_bytes" validate:"min=1024,max=67108864"`
	InputExt     string `json:"input_ext" validate:"required,file_suffix"`
	OutputSuffix string `json:"output_suffix" validate:"required,file_suffix,nefield=InputExt"`

	ContinueOnOpenError bool `json:"continue_on_open_error"`

	FileTimeout   time.Duration `json:"file_timeout" validate:"min=0"`
	ReadTimeout   time.Duration `json:"read_timeout" validate:"min=0"`
	EncodeTimeout time.Duration `json:"encode_timeout" validate:"min=0"`
}

// FromConfig reads the builder options from config with CORE_BUILD_ prefix
func FromConfig(cfg config.Conf) Options {
	b := cfg.Prefix("CORE_BUILD_")
	return Options{
		BatchSize:           b.MayInt("BATCH_SIZE", service.DefaultBatchSize),
		Workers:             b.MayInt("WORKERS", runtime.GOMAXPROCS(0)),
		ErrorBudget:         b.MayInt("ERROR_BUDGET", 10),
		Level:               b.MayInt("LEVEL", freqfile.DefaultLevel),
		MaxLineBytes:        b.MayInt("MAX_LINE_BYTES", archive.DefaultMaxLineBytes),
		InputExt:            b.MayString("INPUT_EXT", ".zst"),
		OutputSuffix:        b.MayString("OUTPUT_SUFFIX", ".users.freqs"),
		ContinueOnOpenError: b.MayBool("CONTINUE_ON_OPEN_ERROR", false),
		FileTimeout:         b.MayDuration("FILE_TIMEOUT", 0),
		ReadTimeout:         b.MayDuration("READ_TIMEOUT", 0),
		EncodeTimeout:       b.MayDuration("ENCODE_TIMEOUT", 0),
	}
}

// Validate reports the first invalid option as an InvalidArgument error
func (o Options) Validate() error { return validate.Struct(o) }
