package network

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Framing selects how envelopes are delimited on a byte stream.
type Framing int

const (
	// FramingJSON splits back-to-back JSON objects, ignoring braces inside
	// string literals.
	FramingJSON Framing = iota
	// FramingLegacy counts every brace byte, strings included.
	FramingLegacy
	// FramingLength prefixes each object with its little-endian uint32 size.
	FramingLength
)

// DefaultMaxFrame caps a single envelope.
const DefaultMaxFrame = 10 * 1024

var ErrFrameTooLarge = errors.New("frame too large")

func (f Framing) String() string {
	switch f {
	case FramingJSON:
		return "json"
	case FramingLegacy:
		return "legacy"
	case FramingLength:
		return "length"
	}
	return fmt.Sprintf("Framing(%d)", int(f))
}

func ParseFraming(s string) (Framing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FramingJSON, nil
	case "legacy":
		return FramingLegacy, nil
	case "length":
		return FramingLength, nil
	}
	return 0, fmt.Errorf("unknown framing %q", s)
}

// Framer reassembles envelopes from a stream regardless of how the bytes
// were chunked in transit.
type Framer struct {
	r    *bufio.Reader
	mode Framing
	max  int
}

func NewFramer(r io.Reader, mode Framing, max int) *Framer {
	if max <= 0 {
		max = DefaultMaxFrame
	}
	return &Framer{r: bufio.NewReader(r), mode: mode, max: max}
}

// ReadFrame blocks until one complete envelope has arrived. After any
// error, ErrFrameTooLarge included, the stream position is undefined and
// the Framer must be discarded along with its connection.
func (f *Framer) ReadFrame() ([]byte, error) {
	if f.mode == FramingLength {
		return f.readLength()
	}
	return f.readBraces(f.mode == FramingJSON)
}

func (f *Framer) readLength() ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(f.r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n > uint32(f.max) {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrFrameTooLarge, n, f.max)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(f.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (f *Framer) readBraces(stringAware bool) ([]byte, error) {
	// Skip anything before the opening brace.
	for {
		b, err := f.r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == '{' {
			break
		}
	}

	buf := []byte{'{'}
	depth := 1
	inString, escaped := false, false
	for depth > 0 {
		b, err := f.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		buf = append(buf, b)
		if len(buf) > f.max {
			return nil, fmt.Errorf("%w: more than %d bytes", ErrFrameTooLarge, f.max)
		}

		if stringAware && inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = stringAware
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return buf, nil
}

// WriteFrame writes one envelope in the given framing.
func WriteFrame(w io.Writer, mode Framing, frame []byte) error {
	if mode == FramingLength {
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(frame)))
		if _, err := w.Write(lenBuf[:]); err != nil {
			return err
		}
	}
	_, err := w.Write(frame)
	return err
}
