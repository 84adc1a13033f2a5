// Package logging configures the zap loggers shared by the cost engine,
// the rule loader, the HTTP API and the two binaries.
//
// Components take a named child of the global logger (see Named and the
// Component constants) so a log line always says which stage produced it.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Component names passed to Named
const (
	ComponentEngine = "engine"
	ComponentRules  = "rules"
	ComponentAPI    = "api"
	ComponentServer = "server"
	ComponentCLI    = "cli"
)

// Logger is the process-wide logger. It is usable before Initialize runs.
var Logger *zap.Logger

// Config selects level, encoding and destination.
// It is embedded in the service configuration under "logging".
type Config struct {
	// Level is the minimum log level
	Level string `json:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`

	// Format is json for the server, console for interactive CLI use
	Format string `json:"format" mapstructure:"format" validate:"omitempty,oneof=json console"`

	// Output is stdout, stderr or a file path. The CLI keeps stdout for reports.
	Output string `json:"output" mapstructure:"output"`

	// Development adds stack traces on errors
	Development bool `json:"development" mapstructure:"development"`
}

// DefaultConfig logs info and above to stderr so piped cost reports stay clean
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
		Output: "stderr",
	}
}

// Initialize replaces the global logger
func Initialize(cfg Config) error {
	logger, err := New(cfg)
	if err != nil {
		return err
	}
	Logger = logger
	return nil
}

// New builds a logger without touching the global instance.
// An unknown level falls back to info.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	sink, err := openSink(cfg.Output)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(encoder, sink, level)
	if cfg.Development {
		return zap.New(core, zap.Development(), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
	}
	return zap.New(core, zap.AddCaller()), nil
}

func openSink(output string) (zapcore.WriteSyncer, error) {
	switch output {
	case "stdout":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr", "":
		return zapcore.AddSync(os.Stderr), nil
	}
	file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(file), nil
}

// Sync flushes the global logger
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// Named returns a child of the global logger for one component
func Named(component string) *zap.Logger {
	return Logger.Named(component)
}

// Field keys shared across components, so engine and API lines can be joined
const (
	keyElementID   = "element_id"
	keyProvider    = "provider"
	keyTable       = "table"
	keyPriceListID = "price_list_id"
	keyRequestID   = "request_id"
)

// ElementID tags a line with the element's GlobalId (or its fallback id)
func ElementID(id string) zap.Field { return zap.String(keyElementID, id) }

// Provider tags a line with a cost provider name
func Provider(name string) zap.Field { return zap.String(keyProvider, name) }

// Table tags a line with a rule table name
func Table(name string) zap.Field { return zap.String(keyTable, name) }

// PriceListID tags a line with a price list id
func PriceListID(id string) zap.Field { return zap.String(keyPriceListID, id) }

// RequestID tags a line with the X-Request-ID of an API call
func RequestID(id string) zap.Field { return zap.String(keyRequestID, id) }

func init() {
	_ = Initialize(DefaultConfig())
}
