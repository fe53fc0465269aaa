package dataset

// reader.go wraps raw CSV file readers to survive common export artifacts:
// a UTF-8 BOM from Windows tooling, and stray invalid UTF-8 bytes from
// legacy POS exports. Both transforms are streaming; files are never loaded
// whole.

import (
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// prepareReader applies BOM skipping and UTF-8 sanitization, in that order.
func prepareReader(r io.Reader) io.Reader {
	return &sanitizingReader{reader: &bomSkippingReader{reader: r}}
}

// bomSkippingReader drops a leading UTF-8 BOM, if present, on the first read.
type bomSkippingReader struct {
	reader  io.Reader
	checked bool
	held    []byte
}

func (b *bomSkippingReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true

		var head [3]byte
		n, err := io.ReadFull(b.reader, head[:])
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if n > 0 && !(n == 3 && head[0] == utf8BOM[0] && head[1] == utf8BOM[1] && head[2] == utf8BOM[2]) {
			b.held = append(b.held, head[:n]...)
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
	}

	if len(b.held) > 0 {
		n := copy(p, b.held)
		b.held = b.held[n:]
		return n, nil
	}

	return b.reader.Read(p)
}

// sanitizingReader replaces invalid UTF-8 bytes with '?' so the CSV parser
// downstream always sees valid text. A multi-byte sequence split across two
// reads is held back until its remaining bytes arrive.
type sanitizingReader struct {
	reader  io.Reader
	pending []byte
	eof     bool
}

func (s *sanitizingReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.reader.Read(p[offset:])
	n += offset
	if err == io.EOF {
		s.eof = true
	}
	if n == 0 {
		return 0, err
	}

	if allASCII(p[:n]) {
		return n, err
	}

	return s.sanitize(p[:n]), err
}

func (s *sanitizingReader) sanitize(data []byte) int {
	write := 0
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			if !s.eof && expectedRuneLen(data[read]) > len(data)-read {
				// Possibly the start of a sequence completed by the next read.
				s.pending = append(s.pending, data[read:]...)
				return write
			}
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

func allASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// expectedRuneLen returns the sequence length implied by a UTF-8 lead byte,
// or 0 for a continuation byte.
func expectedRuneLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}
