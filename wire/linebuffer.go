package wire

import (
	"bytes"
	"strings"
)

// LineBuffer turns successive raw fragments of a byte stream into an
// ordered sequence of complete lines, carrying the trailing partial line
// forward across writes. Splitting happens on the byte level, so
// multi-byte UTF-8 sequences split across fragment boundaries reassemble
// correctly: '\n' never occurs inside a multi-byte sequence.
//
// A LineBuffer is owned by exactly one stream and is not safe for
// concurrent use.
type LineBuffer struct {
	rest []byte
}

// Write appends a fragment and returns all complete lines it unlocked,
// in order, without their trailing newline. The final unterminated
// segment is retained for the next write.
func (b *LineBuffer) Write(fragment []byte) []string {
	if len(fragment) == 0 {
		return nil
	}
	b.rest = append(b.rest, fragment...)

	var lines []string
	for {
		i := bytes.IndexByte(b.rest, '\n')
		if i < 0 {
			return lines
		}
		line := string(b.rest[:i])
		b.rest = b.rest[i+1:]
		lines = append(lines, strings.TrimSuffix(line, "\r"))
	}
}

// WriteString is Write for string fragments.
func (b *LineBuffer) WriteString(fragment string) []string {
	return b.Write([]byte(fragment))
}

// Rest returns the unterminated tail. At stream end this content is
// dropped by callers: an unterminated final line cannot be validated as
// a complete event, and terminal completeness is enforced separately by
// requiring a terminal event before EOF. Exposed so callers can log what
// was discarded.
func (b *LineBuffer) Rest() string {
	return string(b.rest)
}

// Reset discards any buffered tail.
func (b *LineBuffer) Reset() {
	b.rest = nil
}
