package runtime

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readAll(t *testing.T, lr *LineReader) []string {
	t.Helper()
	var lines []string
	for {
		line, err := lr.ReadLine()
		if errors.Is(err, io.EOF) {
			return lines
		}
		if err != nil {
			t.Fatalf("ReadLine error: %v", err)
		}
		lines = append(lines, line)
	}
}

func TestLineReader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "hello", []string{"hello"}},
		{"trailing newline", "a\nb\n", []string{"a", "b"}},
		{"blank lines", "\n\nx\n", []string{"", "", "x"}},
		{"crlf", "one\r\ntwo\r\n", []string{"one", "two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := NewLineReader(strings.NewReader(tt.input))
			got := readAll(t, lr)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("lines = %q, want %q", got, tt.want)
			}
			if lr.LineNum() != len(tt.want) {
				t.Errorf("LineNum() = %d, want %d", lr.LineNum(), len(tt.want))
			}
		})
	}
}

func TestLineReaderMultipleReaders(t *testing.T) {
	lr := NewLineReader(strings.NewReader("a\nb"), strings.NewReader(""), strings.NewReader("c\n"))
	got := readAll(t, lr)
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("lines = %q, want [a b c]", got)
	}
}

func TestLineReaderEOFIsSticky(t *testing.T) {
	lr := NewLineReader(strings.NewReader("x\n"))
	if _, err := lr.ReadLine(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := lr.ReadLine(); !errors.Is(err, io.EOF) {
			t.Fatalf("read %d after end: error = %v, want io.EOF", i, err)
		}
	}
}

func TestOpenFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.txt")
	second := filepath.Join(dir, "second.txt")
	if err := os.WriteFile(first, []byte("a\nb\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("c"), 0o644); err != nil {
		t.Fatal(err)
	}

	lr := OpenFiles([]string{first, second})
	defer lr.Close()

	line, err := lr.ReadLine()
	if err != nil || line != "a" {
		t.Fatalf("first line = %q, %v", line, err)
	}
	if lr.Filename() != first {
		t.Errorf("Filename() = %q, want %q", lr.Filename(), first)
	}

	rest := readAll(t, lr)
	if strings.Join(rest, ",") != "b,c" {
		t.Errorf("remaining lines = %q, want [b c]", rest)
	}
	if lr.LineNum() != 3 {
		t.Errorf("LineNum() = %d, want 3", lr.LineNum())
	}
}

func TestOpenFilesMissing(t *testing.T) {
	lr := OpenFiles([]string{filepath.Join(t.TempDir(), "nope.txt")})
	defer lr.Close()

	_, err := lr.ReadLine()
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("error = %v, want open failure", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestLineReaderClose(t *testing.T) {
	lr := NewLineReader(strings.NewReader("a\nb\n"))
	if err := lr.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if _, err := lr.ReadLine(); !errors.Is(err, io.EOF) {
		t.Errorf("ReadLine after Close: error = %v, want io.EOF", err)
	}
}
