package logger

import (
	"os"
	"strings"

	"github.com/raaihank/record-sentinel/internal/masking"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with additional functionality
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
}

// Config contains logger configuration
type Config struct {
	Level  string
	Format string // json or console
	File   *FileConfig
}

// FileConfig contains file logging configuration
type FileConfig struct {
	Enabled  bool
	Path     string
	MaxSize  int
	MaxAge   int
	Compress bool
}

// New creates a new logger instance
func New(config Config) (*Logger, error) {
	// Parse log level
	parsed, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		return nil, err
	}
	level := zap.NewAtomicLevelAt(parsed)

	// Create encoder config
	var encoderConfig zapcore.EncoderConfig
	if config.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	var encoder zapcore.Encoder
	if config.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level),
	}

	// File output (if enabled)
	if config.File != nil && config.File.Enabled {
		file, err := os.OpenFile(config.File.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, err
		}

		fileEncoderConfig := zap.NewProductionEncoderConfig()
		fileEncoderConfig.TimeKey = "timestamp"
		fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(fileEncoderConfig),
			zapcore.AddSync(file),
			level,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	return &Logger{Logger: logger, level: level}, nil
}

// NewNop returns a logger that discards everything, for tests and tools
func NewNop() *Logger {
	return FromZap(zap.NewNop())
}

// FromZap wraps an existing zap logger. SetLevel only affects loggers built
// by New.
func FromZap(z *zap.Logger) *Logger {
	return &Logger{Logger: z, level: zap.NewAtomicLevel()}
}

// SetLevel changes the minimum level of every core at runtime
func (l *Logger) SetLevel(level string) error {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	l.level.SetLevel(parsed)
	return nil
}

// Level returns the current minimum level
func (l *Logger) Level() zapcore.Level {
	return l.level.Level()
}

// WithRequestID adds a request ID to the logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.Logger.With(zap.String("request_id", requestID)), level: l.level}
}

// WithComponent adds a component name to the logger context
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With(zap.String("component", component)), level: l.level}
}

// LogRequest logs an HTTP request with credential headers masked
func (l *Logger) LogRequest(method, path string, headers map[string][]string) {
	l.Debug("HTTP request headers",
		zap.String("method", method),
		zap.String("path", path),
		zap.Any("headers", RedactHeaders(headers)),
	)
}

// LogResponse logs an HTTP response with credential headers masked
func (l *Logger) LogResponse(statusCode int, headers map[string][]string) {
	l.Debug("HTTP response headers",
		zap.Int("status_code", statusCode),
		zap.Any("headers", RedactHeaders(headers)),
	)
}

// RedactHeaders flattens headers for logging. Credentials keep their scheme
// and are masked as secrets; cookies are dropped entirely.
func RedactHeaders(headers map[string][]string) map[string]string {
	safe := make(map[string]string, len(headers))
	for k, v := range headers {
		if len(v) == 0 {
			continue
		}
		switch {
		case isCookieHeader(k):
			safe[k] = "[REDACTED]"
		case isCredentialHeader(k):
			safe[k] = maskCredential(v[0])
		default:
			safe[k] = v[0]
		}
	}
	return safe
}

// maskCredential masks the token of an "<scheme> <token>" header value
func maskCredential(value string) string {
	scheme, token, found := strings.Cut(value, " ")
	if !found {
		return masking.Secret(value)
	}
	return scheme + " " + masking.Secret(strings.TrimSpace(token))
}

func isCredentialHeader(header string) bool {
	credentialHeaders := []string{
		"authorization",
		"x-api-key",
		"x-auth-token",
		"x-access-token",
	}

	headerLower := strings.ToLower(header)
	for _, h := range credentialHeaders {
		if strings.Contains(headerLower, h) {
			return true
		}
	}
	return false
}

func isCookieHeader(header string) bool {
	return strings.Contains(strings.ToLower(header), "cookie")
}
