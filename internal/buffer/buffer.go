// Package buffer provides the line-addressable text store underneath a
// document. Lines are immutable strings, so snapshots of the store can
// share unchanged line storage and a commit costs one slice copy.
package buffer

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

var (
	ErrOutOfRange        = errors.New("coordinate out of range")
	ErrMalformedEncoding = errors.New("malformed encoding")
)

// Buffer stores document text one line per entry. Large files are
// loaded in windows: Open attaches a reader and LoadTo pulls lines in
// as navigation or search needs them, growing residency monotonically.
type Buffer struct {
	lines    []string
	file     *os.File
	reader   *bufio.Reader
	complete bool
	eol      bool
}

// NewEmpty returns a buffer holding a single empty line.
func NewEmpty() *Buffer {
	return &Buffer{
		lines:    []string{""},
		complete: true,
	}
}

// FromLines builds a fully resident buffer, mainly for tests.
func FromLines(lines ...string) *Buffer {
	if len(lines) == 0 {
		lines = []string{""}
	}
	b := &Buffer{
		lines:    make([]string, len(lines)),
		complete: true,
		eol:      true,
	}
	copy(b.lines, lines)
	return b
}

// Open attaches the buffer to a file without reading any lines yet.
// A not-found error is returned unwrapped so callers can detect it
// with errors.Is(err, fs.ErrNotExist).
func Open(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Buffer{
		file:   f,
		reader: bufio.NewReader(f),
	}, nil
}

// LoadTo guarantees lines [0,n) are resident, reading from the backing
// file as needed. Residency never shrinks.
func (b *Buffer) LoadTo(n int) error {
	for !b.complete && len(b.lines) < n {
		if err := b.readLine(); err != nil {
			return err
		}
	}
	return nil
}

// LoadAll drains the backing reader. Save, wrapping search and
// replace-all need the whole document resident.
func (b *Buffer) LoadAll() error {
	for !b.complete {
		if err := b.readLine(); err != nil {
			return err
		}
	}
	return nil
}

func (b *Buffer) readLine() error {
	chunk, err := b.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	atEOF := err != nil
	if atEOF && chunk == "" {
		b.finish()
		return nil
	}
	if strings.HasSuffix(chunk, "\n") {
		chunk = strings.TrimSuffix(chunk, "\n")
		chunk = strings.TrimSuffix(chunk, "\r")
		b.eol = true
	} else {
		b.eol = false
	}
	if !utf8.ValidString(chunk) {
		return ErrMalformedEncoding
	}
	b.lines = append(b.lines, chunk)
	if atEOF {
		b.finish()
	}
	return nil
}

func (b *Buffer) finish() {
	b.complete = true
	if b.file != nil {
		_ = b.file.Close()
		b.file = nil
		b.reader = nil
	}
	if len(b.lines) == 0 {
		b.lines = []string{""}
	}
}

// Close releases the backing file for partially loaded buffers.
func (b *Buffer) Close() {
	if b.file != nil {
		_ = b.file.Close()
		b.file = nil
		b.reader = nil
		b.complete = true
	}
}

// Line returns the resident line at y, if any.
func (b *Buffer) Line(y int) (string, bool) {
	if y < 0 || y >= len(b.lines) {
		return "", false
	}
	return b.lines[y], true
}

// LineCount reports the number of resident lines.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Complete reports whether the whole backing file has been read.
func (b *Buffer) Complete() bool {
	return b.complete
}

// EndsWithEOL reports whether the source text had a trailing newline.
func (b *Buffer) EndsWithEOL() bool {
	return b.eol
}

// OutOfRange fails with ErrOutOfRange when loc does not address a
// character position inside the buffer. X equal to the line length is
// valid (the append position within the line).
func (b *Buffer) OutOfRange(x, y int) error {
	if y < 0 || y >= len(b.lines) {
		return ErrOutOfRange
	}
	if x < 0 || x > utf8.RuneCountInString(b.lines[y]) {
		return ErrOutOfRange
	}
	return nil
}

// Insert places text (no newlines) at loc.
func (b *Buffer) Insert(loc Loc, text string) error {
	if err := b.OutOfRange(loc.X, loc.Y); err != nil {
		return err
	}
	line := []rune(b.lines[loc.Y])
	var sb strings.Builder
	sb.WriteString(string(line[:loc.X]))
	sb.WriteString(text)
	sb.WriteString(string(line[loc.X:]))
	b.lines[loc.Y] = sb.String()
	return nil
}

// Delete removes text starting at loc. The removed characters must
// equal text; otherwise nothing is mutated.
func (b *Buffer) Delete(loc Loc, text string) error {
	if err := b.OutOfRange(loc.X, loc.Y); err != nil {
		return err
	}
	line := []rune(b.lines[loc.Y])
	n := utf8.RuneCountInString(text)
	if loc.X+n > len(line) {
		return ErrOutOfRange
	}
	if string(line[loc.X:loc.X+n]) != text {
		return ErrOutOfRange
	}
	b.lines[loc.Y] = string(line[:loc.X]) + string(line[loc.X+n:])
	return nil
}

// InsertLine places a new line at index y. Y equal to the line count
// appends at the end of the document.
func (b *Buffer) InsertLine(y int, text string) error {
	if y < 0 || y > len(b.lines) {
		return ErrOutOfRange
	}
	b.lines = append(b.lines, "")
	copy(b.lines[y+1:], b.lines[y:])
	b.lines[y] = text
	return nil
}

// DeleteLine removes line y and returns its content.
func (b *Buffer) DeleteLine(y int) (string, error) {
	if y < 0 || y >= len(b.lines) {
		return "", ErrOutOfRange
	}
	text := b.lines[y]
	b.lines = append(b.lines[:y], b.lines[y+1:]...)
	if len(b.lines) == 0 {
		b.lines = []string{""}
	}
	return text, nil
}

// SplitDown splits line loc.Y at column loc.X into two lines.
func (b *Buffer) SplitDown(loc Loc) error {
	if err := b.OutOfRange(loc.X, loc.Y); err != nil {
		return err
	}
	line := []rune(b.lines[loc.Y])
	upper, lower := string(line[:loc.X]), string(line[loc.X:])
	b.lines[loc.Y] = upper
	return b.InsertLine(loc.Y+1, lower)
}

// SpliceUp removes the line break at loc, pulling line loc.Y+1 onto
// the end of line loc.Y.
func (b *Buffer) SpliceUp(loc Loc) error {
	if err := b.OutOfRange(loc.X, loc.Y); err != nil {
		return err
	}
	if loc.Y+1 >= len(b.lines) {
		return ErrOutOfRange
	}
	b.lines[loc.Y] += b.lines[loc.Y+1]
	b.lines = append(b.lines[:loc.Y+1], b.lines[loc.Y+2:]...)
	return nil
}

// Lines returns a copy of the resident line slice. The strings inside
// are shared, which is what keeps snapshots cheap.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// SetLines replaces the resident lines, used when a snapshot is
// applied. The backing reader, if any, is left where it was.
func (b *Buffer) SetLines(lines []string) {
	b.lines = make([]string, len(lines))
	copy(b.lines, lines)
	if len(b.lines) == 0 {
		b.lines = []string{""}
	}
}

// String joins the resident lines back into file content, restoring
// the recorded trailing newline.
func (b *Buffer) String() string {
	s := strings.Join(b.lines, "\n")
	if b.eol {
		s += "\n"
	}
	return s
}
