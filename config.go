package transfer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/lixenwraith/config"
)

// Config holds all transfer engine configuration values. Format and
// auto-flush are fixed for the lifetime of a context; size limits feed the
// buffer manager and the file writer.
type Config struct {
	// Record encoding: "json", "csv", "text", or "binary"
	Format string `toml:"format"`
	// AutoFlush makes every non-forced flush persist regardless of occupancy
	AutoFlush bool `toml:"auto_flush"`

	// Line buffer capacity, human-readable ("64KB", "1MB", ...)
	BufferSize string `toml:"buffer_size"`
	// Rotation threshold per output file; "0" disables rotation and the
	// active file grows unbounded
	MaxFileSize string `toml:"max_file_size"`
	// Rotated files kept on the volume, 0 = unlimited
	MaxFiles int64 `toml:"max_files"`

	// Output file naming: <prefix>_<YYYYMMDD_HHMMSS>.<extension>
	FilePrefix    string `toml:"file_prefix"`
	FileExtension string `toml:"file_extension"`

	// Advisory flush cadence for callers driving periodic Flush(false);
	// the engine itself never flushes on a timer
	WriteIntervalMs int64 `toml:"write_interval_ms"`
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Format:          "json",
	AutoFlush:       true,
	BufferSize:      "64KB",
	MaxFileSize:     "1MB",
	MaxFiles:        10,
	FilePrefix:      "plouton_data",
	FileExtension:   "dat",
	WriteIntervalMs: 5000,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from a TOML file and returns a
// validated Config. Missing file or keys fall back to defaults.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	loader := config.New()

	if err := loader.RegisterStruct("transfer.", *cfg); err != nil {
		return nil, fmt.Errorf("transfer: failed to register config struct: %w", err)
	}

	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("transfer: failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "transfer.", cfg); err != nil {
		return nil, fmt.Errorf("transfer: failed to extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// extractConfig copies loaded values into the Config struct by toml tag
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue // Use default value
		}

		if err := setFieldValue(fieldValue, val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if _, err := ParseFormat(c.Format); err != nil {
		return err
	}

	bufSize, err := c.bufferCapacity()
	if err != nil {
		return err
	}
	if bufSize <= 0 {
		return fmtErrorf("buffer_size must be positive: %s", c.BufferSize)
	}
	if bufSize <= len(bufferTimeLayout)+1 {
		return fmtErrorf("buffer_size too small to hold a single record: %s", c.BufferSize)
	}

	if _, err := c.maxFileBytes(); err != nil {
		return err
	}

	if c.MaxFiles < 0 {
		return fmtErrorf("max_files cannot be negative: %d", c.MaxFiles)
	}

	if strings.TrimSpace(c.FilePrefix) == "" {
		return fmtErrorf("file_prefix cannot be empty")
	}

	if strings.HasPrefix(c.FileExtension, ".") {
		return fmtErrorf("file_extension should not start with dot: %s", c.FileExtension)
	}
	if strings.TrimSpace(c.FileExtension) == "" {
		return fmtErrorf("file_extension cannot be empty")
	}

	if c.WriteIntervalMs < 0 {
		return fmtErrorf("write_interval_ms cannot be negative: %d", c.WriteIntervalMs)
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

// bufferCapacity parses BufferSize into bytes
func (c *Config) bufferCapacity() (int, error) {
	var size datasize.ByteSize
	if err := size.UnmarshalText([]byte(c.BufferSize)); err != nil {
		return 0, fmtErrorf("invalid buffer_size '%s': %v", c.BufferSize, err)
	}
	return int(size.Bytes()), nil
}

// maxFileBytes parses MaxFileSize into bytes, 0 meaning rotation disabled
func (c *Config) maxFileBytes() (int64, error) {
	if strings.TrimSpace(c.MaxFileSize) == "" || c.MaxFileSize == "0" {
		return 0, nil
	}
	var size datasize.ByteSize
	if err := size.UnmarshalText([]byte(c.MaxFileSize)); err != nil {
		return 0, fmtErrorf("invalid max_file_size '%s': %v", c.MaxFileSize, err)
	}
	return int64(size.Bytes()), nil
}

// ParseFormat converts a format string to its FormatKind.
func ParseFormat(s string) (FormatKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "text", "txt":
		return FormatText, nil
	case "binary", "bin":
		return FormatBinary, nil
	default:
		return 0, fmtErrorf("invalid format: '%s' (use json, csv, text, or binary)", s)
	}
}
