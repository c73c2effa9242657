package module

import (
	"userfreqs/internal/adapters/store/freqfile"
	"userfreqs/internal/core/codec"
	"userfreqs/internal/platform/config"
	"userfreqs/internal/platform/validate"
)

// DefaultOutputSuffix is appended to the full input file name
const DefaultOutputSuffix = ".users.freqs.migrated"

// Options holds configuration options for the migrator
type Options struct {
	Level        int    `json:"level" validate:"min=1,max=22"`
	InputExt     string `json:"input_ext" validate:"required,file_suffix"`
	OutputSuffix string `json:"output_suffix" validate:"required,file_suffix,nefield=InputExt"`
	From         string `json:"from" validate:"oneof=auto v1 v2"`

	ContinueOnOpenError bool `json:"continue_on_open_error"`
}

// FromConfig reads the migrator options from config with CORE_MIGRATE_ prefix
func FromConfig(cfg config.Conf) Options {
	m := cfg.Prefix("CORE_MIGRATE_")
	return Options{
		Level:               m.MayInt("LEVEL", freqfile.DefaultLevel),
		InputExt:            m.MayString("INPUT_EXT", ".freqs"),
		OutputSuffix:        m.MayString("OUTPUT_SUFFIX", DefaultOutputSuffix),
		From:                m.MayEnum("FROM", "auto", "auto", "v1", "v2"),
		ContinueOnOpenError: m.MayBool("CONTINUE_ON_OPEN_ERROR", false),
	}
}

// Validate reports the first invalid option as an InvalidArgument error
func (o Options) Validate() error { return validate.Struct(o) }

// Version returns the configured source format
func (o Options) Version() codec.Version {
	v, _ := codec.ParseVersion(o.From)
	return v
}
