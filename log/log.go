// Package log provides the process-wide structured logger used by every
// other package: a zerolog.Logger guarded by a mutex so it can be
// reconfigured (level, output, error-mirroring) at any point during the
// process lifetime, including mid-test.
package log

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"os"
	"path"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"

	RFC3339Milli = "2006-01-02T15:04:05.000Z07:00"
)

var (
	log   zerolog.Logger
	logMu sync.RWMutex

	panicOnInvalidChars = os.Getenv("EVOTING_LOG_PANIC_ON_INVALIDCHARS") == "true"
)

func init() {
	Init(cmp.Or(os.Getenv("EVOTING_LOG_LEVEL"), "error"), "stderr", nil)
}

// Logger returns a copy of the current global logger.
func Logger() *zerolog.Logger {
	logger := getLogger()
	return &logger
}

func getLogger() zerolog.Logger {
	logMu.RLock()
	logger := log
	logMu.RUnlock()
	return logger
}

func setLogger(logger zerolog.Logger) {
	logMu.Lock()
	log = logger
	logMu.Unlock()
}

var logTestWriter io.Writer
const logTestWriterName = "log_test_writer"

var logTestTime, _ = time.Parse(RFC3339Milli, "2006-01-02T15:04:05.000Z")

// panicOnErrorHook panics (after a delay, once) the first time an Error (or
// higher) level log is emitted on a logger it is attached to. Intended for
// integration tests that want to fail loudly the moment something logs an
// error, instead of asserting on log output after the fact.
type panicOnErrorHook struct {
	TestName string
	Delay    time.Duration
	Handler  func(string)
	once     sync.Once
}

func (h *panicOnErrorHook) Run(_ *zerolog.Event, level zerolog.Level, msg string) {
	if level < zerolog.ErrorLevel {
		return
	}
	panicMsg := fmt.Sprintf("error logged during test %s: %s", h.TestName, msg)
	h.once.Do(func() {
		delay := h.Delay
		if delay <= 0 {
			delay = time.Second
		}
		handler := h.Handler
		if handler == nil {
			handler = func(message string) { panic(message) }
		}
		time.AfterFunc(delay, func() { handler(panicMsg) })
	})
}

// EnablePanicOnError installs a panicOnErrorHook on the current logger and
// returns the previous logger so the caller can restore it with
// RestoreLogger.
func EnablePanicOnError(testName string) zerolog.Logger {
	return EnablePanicOnErrorWithHandler(testName, time.Second, nil)
}

// EnablePanicOnErrorWithHandler is EnablePanicOnError with an explicit
// delay and handler; a nil handler panics with the error message.
func EnablePanicOnErrorWithHandler(testName string, delay time.Duration, handler func(string)) zerolog.Logger {
	previous := getLogger()
	setLogger(previous.Hook(&panicOnErrorHook{TestName: testName, Delay: delay, Handler: handler}))
	return previous
}

// RestoreLogger resets the global logger to a previously saved value,
// dropping any hooks installed since.
func RestoreLogger(previous zerolog.Logger) {
	setLogger(previous)
}

type errorLevelWriter struct {
	io.Writer
}

var _ zerolog.LevelWriter = &errorLevelWriter{}

func (*errorLevelWriter) Write(_ []byte) (int, error) {
	panic("errorLevelWriter.Write called directly; zerolog should call WriteLevel")
}

func (w *errorLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < zerolog.WarnLevel {
		return len(p), nil
	}
	return w.Writer.Write(p)
}

// invalidCharChecker panics when a formatted log line contains the Unicode
// replacement character, which almost always means a format/encoding
// mismatch in the caller. Guarded by panicOnInvalidChars so it costs
// nothing outside of tests that opt in.
type invalidCharChecker struct{}

func (*invalidCharChecker) Write(p []byte) (int, error) {
	if bytes.ContainsRune(p, '�') {
		panic(fmt.Sprintf("log line with invalid characters: %q", string(p)))
	}
	return len(p), nil
}

// Init (re)configures the global logger: level is one of the Level*
// constants, output is "stdout", "stderr", a file path, or the internal
// test-writer name; errorOutput, if non-nil, receives a mirrored copy of
// Warn-and-above records.
func Init(level, output string, errorOutput io.Writer) {
	var out io.Writer
	outputs := []io.Writer{}
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	case logTestWriterName:
		out = logTestWriter
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			panic(fmt.Sprintf("log: cannot open output %q: %v", output, err))
		}
		out = f
		if strings.HasSuffix(output, ".json") {
			outputs = append(outputs, f)
			out = os.Stdout
		}
	}
	out = zerolog.ConsoleWriter{Out: out, TimeFormat: RFC3339Milli}
	outputs = append(outputs, out)

	if errorOutput != nil {
		outputs = append(outputs, &errorLevelWriter{zerolog.ConsoleWriter{
			Out:        errorOutput,
			TimeFormat: RFC3339Milli,
			NoColor:    true,
		}})
	}
	if panicOnInvalidChars {
		outputs = append(outputs, zerolog.ConsoleWriter{Out: &invalidCharChecker{}})
	}
	if len(outputs) > 1 {
		out = zerolog.MultiLevelWriter(outputs...)
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	if output == logTestWriterName {
		zerolog.TimestampFunc = func() time.Time { return logTestTime }
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	logger = logger.With().Caller().Logger()
	zerolog.CallerSkipFrameCount = 3
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return fmt.Sprintf("%s/%s:%d", path.Base(path.Dir(file)), path.Base(file), line)
	}

	switch level {
	case LevelDebug:
		logger = logger.Level(zerolog.DebugLevel)
	case LevelInfo:
		logger = logger.Level(zerolog.InfoLevel)
	case LevelWarn:
		logger = logger.Level(zerolog.WarnLevel)
	case LevelError:
		logger = logger.Level(zerolog.ErrorLevel)
	default:
		panic(fmt.Sprintf("log: invalid level %q", level))
	}

	setLogger(logger)
	logger.Info().Msgf("logger initialized at level %s, output %s", level, output)
}

// Level returns the current log level.
func Level() string {
	switch level := getLogger().GetLevel(); level {
	case zerolog.DebugLevel:
		return LevelDebug
	case zerolog.InfoLevel:
		return LevelInfo
	case zerolog.WarnLevel:
		return LevelWarn
	case zerolog.ErrorLevel:
		return LevelError
	default:
		panic(fmt.Sprintf("log: invalid level %v", level))
	}
}

func Debug(args ...any) {
	logger := getLogger()
	if logger.GetLevel() > zerolog.DebugLevel {
		return
	}
	logger.Debug().Msg(fmt.Sprint(args...))
}

func Info(args ...any) { getLogger().Info().Msg(fmt.Sprint(args...)) }

func Warn(args ...any) { getLogger().Warn().Msg(fmt.Sprint(args...)) }

func Error(args ...any) { getLogger().Error().Msg(fmt.Sprint(args...)) }

func Fatal(args ...any) {
	getLogger().Fatal().Msg(fmt.Sprint(args...) + "\n" + string(debug.Stack()))
	panic("unreachable")
}

func Debugf(template string, args ...any) { Logger().Debug().Msgf(template, args...) }

func Infof(template string, args ...any) { Logger().Info().Msgf(template, args...) }

func Warnf(template string, args ...any) { Logger().Warn().Msgf(template, args...) }

func Errorf(template string, args ...any) { Logger().Error().Msgf(template, args...) }

func Fatalf(template string, args ...any) {
	Logger().Fatal().Msgf(template+"\n"+string(debug.Stack()), args...)
}

func Debugw(msg string, keyvalues ...any) { Logger().Debug().Fields(keyvalues).Msg(msg) }

func Infow(msg string, keyvalues ...any) { Logger().Info().Fields(keyvalues).Msg(msg) }

func Warnw(msg string, keyvalues ...any) { Logger().Warn().Fields(keyvalues).Msg(msg) }

func Errorw(err error, msg string) { Logger().Error().Err(err).Msg(msg) }
