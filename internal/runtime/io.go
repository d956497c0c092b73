package runtime

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
)

// MaxLineSize bounds the length of a single input line.
const MaxLineSize = 1 << 20

// LineReader yields newline-terminated lines from one or more inputs in
// order. Named inputs are opened lazily and closed as soon as they are
// exhausted; "-" names standard input.
type LineReader struct {
	mu sync.Mutex

	names   []string    // Remaining named inputs
	readers []io.Reader // Remaining unnamed inputs

	scanner  *bufio.Scanner
	file     *os.File // Currently open named input, if any
	filename string
	lineNum  int
}

// NewLineReader returns a LineReader over the given readers, read in order.
// A final line without a terminator still counts as a line in each reader.
func NewLineReader(rs ...io.Reader) *LineReader {
	return &LineReader{readers: append([]io.Reader(nil), rs...)}
}

// OpenFiles returns a LineReader over the named files. With no names it
// reads standard input.
func OpenFiles(names []string) *LineReader {
	if len(names) == 0 {
		names = []string{"-"}
	}
	return &LineReader{names: append([]string(nil), names...)}
}

// ReadLine returns the next line without its terminator. It returns io.EOF
// once every input is exhausted.
func (lr *LineReader) ReadLine() (string, error) {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	for {
		if lr.scanner == nil {
			ok, err := lr.nextInput()
			if err != nil {
				return "", err
			}
			if !ok {
				return "", io.EOF
			}
		}

		if lr.scanner.Scan() {
			lr.lineNum++
			line := lr.scanner.Text()
			if n := len(line); n > 0 && line[n-1] == '\r' {
				line = line[:n-1]
			}
			return line, nil
		}
		err := lr.scanner.Err()
		lr.closeCurrent()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", lr.displayName(), err)
		}
	}
}

// nextInput advances to the next input. It reports false when none remain.
func (lr *LineReader) nextInput() (bool, error) {
	var r io.Reader
	switch {
	case len(lr.readers) > 0:
		r = lr.readers[0]
		lr.readers = lr.readers[1:]
		lr.filename = ""
	case len(lr.names) > 0:
		name := lr.names[0]
		lr.names = lr.names[1:]
		lr.filename = name
		if name == "-" {
			r = os.Stdin
		} else {
			f, err := os.Open(name)
			if err != nil {
				return false, err
			}
			lr.file = f
			r = f
		}
	default:
		return false, nil
	}

	lr.scanner = bufio.NewScanner(r)
	lr.scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return true, nil
}

func (lr *LineReader) closeCurrent() {
	if lr.file != nil {
		lr.file.Close()
		lr.file = nil
	}
	lr.scanner = nil
}

func (lr *LineReader) displayName() string {
	if lr.filename == "" {
		return "input"
	}
	return lr.filename
}

// Filename returns the name of the current input ("" for unnamed readers).
func (lr *LineReader) Filename() string {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return lr.filename
}

// LineNum returns the number of lines read so far across all inputs.
func (lr *LineReader) LineNum() int {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return lr.lineNum
}

// Close releases any open file. Remaining inputs are discarded.
func (lr *LineReader) Close() error {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	var err error
	if lr.file != nil {
		err = lr.file.Close()
		lr.file = nil
	}
	lr.scanner = nil
	lr.names = nil
	lr.readers = nil
	return err
}
