package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/user/tickclip/pkg/ports"
)

func TestConsoleLogger_Levels(t *testing.T) {
	tests := []struct {
		level     ports.LogLevel
		wantOut   []string
		wantErr   []string
		absentOut []string
	}{
		{ports.LevelDebug, []string{"debug 1", "info 2"}, []string{"warn 3", "error 4"}, nil},
		{ports.LevelInfo, []string{"info 2"}, []string{"warn 3", "error 4"}, []string{"debug 1"}},
		{ports.LevelError, nil, []string{"error 4"}, []string{"debug 1", "info 2"}},
		{ports.LevelQuiet, nil, nil, []string{"debug 1", "info 2"}},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var out, errOut bytes.Buffer
			l := NewConsoleWriter(tt.level, &out, &errOut)

			l.Debug("debug %d", 1)
			l.Info("info %d", 2)
			l.Warn("warn %d", 3)
			l.Error("error %d", 4)

			for _, want := range tt.wantOut {
				if !strings.Contains(out.String(), want) {
					t.Errorf("expected %q on stdout, got %q", want, out.String())
				}
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(errOut.String(), want) {
					t.Errorf("expected %q on stderr, got %q", want, errOut.String())
				}
			}
			for _, absent := range tt.absentOut {
				if strings.Contains(out.String(), absent) {
					t.Errorf("unexpected %q on stdout", absent)
				}
			}
			if tt.level == ports.LevelQuiet && errOut.Len() != 0 {
				t.Errorf("expected nothing on stderr, got %q", errOut.String())
			}
		})
	}
}

func TestConsoleLogger_WithComponent(t *testing.T) {
	var out bytes.Buffer
	l := NewConsoleWriter(ports.LevelDebug, &out, &out)

	l.WithComponent("encode").Debug("stream %d opened", 0)

	if got := out.String(); got != "[encode] stream 0 opened\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestConsoleLogger_PreformattedMessage(t *testing.T) {
	var out bytes.Buffer
	l := NewConsoleWriter(ports.LevelInfo, &out, &out)

	// Already formatted text may carry a literal percent sign
	l.Info("progress 100%")

	if got := out.String(); got != "progress 100%\n" {
		t.Errorf("unexpected output %q", got)
	}
}
