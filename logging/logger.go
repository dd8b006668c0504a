package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide logger. It writes to stderr until InitLogger runs.
var Logger = logrus.New()
var once sync.Once

// CustomFormatter writes one line per entry:
// Date, Time, Event Source, Event Type, Event ID, Message, Location.
type CustomFormatter struct {
	SystemName string
	Location   *time.Location
}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	localTime := entry.Time.In(loc)

	fmt.Fprintf(b, "Date: %s, Time: %s, ", localTime.Format("2006-01-02"), localTime.Format("15:04:05"))
	fmt.Fprintf(b, "Event Source: %s, ", f.SystemName)
	fmt.Fprintf(b, "Event Type: %s, ", strings.ToUpper(entry.Level.String()))
	fmt.Fprintf(b, "Event ID: %s, ", uuid.New().String())
	fmt.Fprintf(b, "Message: %s", entry.Message)

	if entry.HasCaller() {
		fmt.Fprintf(b, ", Location: %s:%d in %s", filepath.Base(entry.Caller.File), entry.Caller.Line, entry.Caller.Function)
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

type Options struct {
	SystemName string
	File       string
	Level      string
	Stdout     bool
}

// InitLogger points Logger at a rotating log file (and stdout when asked).
// Only the first call has any effect.
func InitLogger(opts Options) error {
	var initErr error
	once.Do(func() {
		initErr = configure(Logger, opts)
		if initErr == nil {
			Logger.Infof("Event ID: LOGGER_INITIALIZED, Description: Logger initialized for %s, output to: %s", opts.SystemName, opts.File)
		}
	})
	return initErr
}

func configure(logger *logrus.Logger, opts Options) error {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	var out io.Writer = io.Discard
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		out = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
	}
	if opts.Stdout {
		if opts.File == "" {
			out = os.Stdout
		} else {
			out = io.MultiWriter(out, os.Stdout)
		}
	}

	logger.SetOutput(out)
	logger.SetFormatter(&CustomFormatter{SystemName: opts.SystemName})
	logger.SetLevel(level)
	logger.SetReportCaller(true)
	return nil
}
