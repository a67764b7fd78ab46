package summarizer

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/user/tickclip/pkg/mocks"
)

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	formatter := FormatFunc(func(s *Summary) string { return "report for " + s.Output.Path })
	writer := NewWriter(formatter, fs)

	path := filepath.Join("reports", "summary.md")
	summary := NewBuilder().WithOutput("output.ts", "mpegts", 0).Build()

	if err := writer.Write(path, summary); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, ok := fs.GetFile(path)
	if !ok {
		t.Fatal("expected summary file")
	}
	if string(data) != "report for output.ts" {
		t.Errorf("unexpected content %q", data)
	}
	if exists, _ := fs.Exists("reports"); !exists {
		t.Error("expected parent directory to be created")
	}
}

func TestWriter_WriteError(t *testing.T) {
	fs := mocks.NewFileSystem()
	writeErr := errors.New("disk full")
	fs.WriteFileFunc = func(path string, data []byte) error { return writeErr }
	writer := NewWriter(NewMarkdownFormatter(), fs)

	err := writer.Write("summary.md", NewSummary())
	if !errors.Is(err, writeErr) {
		t.Errorf("expected write error, got %v", err)
	}
}
