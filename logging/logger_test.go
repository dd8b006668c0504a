package logging

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestCustomFormatterLayout(t *testing.T) {
	f := &CustomFormatter{SystemName: "taskboard-api", Location: time.UTC}
	entry := &logrus.Entry{
		Time:    time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "Event ID: LOGIN_FAILED, Description: bad password",
	}

	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	line := string(out)

	for _, want := range []string{
		"Date: 2024-03-09, Time: 14:05:07, ",
		"Event Source: taskboard-api, ",
		"Event Type: WARNING, ",
		"Message: Event ID: LOGIN_FAILED, Description: bad password",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("formatted line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "Location:") {
		t.Errorf("entry without caller should have no location: %q", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Errorf("formatted line should end in newline")
	}
}

func TestCustomFormatterUniqueEventIDs(t *testing.T) {
	f := &CustomFormatter{SystemName: "x", Location: time.UTC}
	entry := &logrus.Entry{Time: time.Now(), Level: logrus.InfoLevel, Message: "m"}

	a, _ := f.Format(entry)
	b, _ := f.Format(&logrus.Entry{Time: entry.Time, Level: entry.Level, Message: entry.Message})
	if bytes.Equal(a, b) {
		t.Errorf("two entries got the same event id: %s", a)
	}
}

func TestConfigure(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "file and level", opts: Options{File: filepath.Join(t.TempDir(), "logs", "app.log"), Level: "debug"}},
		{name: "no outputs", opts: Options{Level: "info"}},
		{name: "bad level", opts: Options{Level: "loud"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := logrus.New()
			err := configure(logger, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("configure error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && logger.GetLevel().String() != tt.opts.Level {
				t.Errorf("level = %s, want %s", logger.GetLevel(), tt.opts.Level)
			}
		})
	}
}
