package session

import (
	"bytes"

	"github.com/atomicstack/hn-over-ssh/internal/nav"
)

const (
	keyEsc   = 0x1b
	keyCtrlC = 0x03
	keyCtrlD = 0x04

	// maxPending bounds how many bytes of an unfinished sequence are held.
	maxPending = 64
)

// Decoder decodes a stream of input chunks. An escape sequence cut off at
// the end of a chunk is held until the next chunk completes it or Flush is
// called, so an arrow key split across reads still decodes as one key.
type Decoder struct {
	pending []byte
}

// Decode returns the keys completed by chunk.
func (d *Decoder) Decode(chunk []byte) []nav.Key {
	data := chunk
	if len(d.pending) > 0 {
		data = append(d.pending, chunk...)
		d.pending = nil
	}
	if cut := incompleteEscape(data); cut < len(data) && len(data)-cut <= maxPending {
		d.pending = append([]byte(nil), data[cut:]...)
		data = data[:cut]
	}
	return DecodeKeys(data)
}

// Pending reports whether bytes are held for the next chunk.
func (d *Decoder) Pending() bool { return len(d.pending) > 0 }

// Flush decodes the held bytes as they are. A lone ESC is the Escape key.
func (d *Decoder) Flush() []nav.Key {
	keys := DecodeKeys(d.pending)
	d.pending = nil
	return keys
}

// incompleteEscape returns the offset of a trailing escape sequence that is
// still missing its final byte, or len(data).
func incompleteEscape(data []byte) int {
	i := bytes.LastIndexByte(data, keyEsc)
	if i < 0 {
		return len(data)
	}
	tail := data[i:]
	switch {
	case len(tail) == 1:
		return i
	case tail[1] == 'O' && len(tail) == 2:
		return i
	case tail[1] == '[':
		j := 2
		for j < len(tail) && tail[j] >= 0x20 && tail[j] <= 0x3f {
			j++
		}
		if j == len(tail) {
			return i
		}
	}
	return len(data)
}

// DecodeKeys splits one input chunk into logical keys, in order. Bytes and
// escape sequences with no binding decode to nav.KeyNone.
func DecodeKeys(chunk []byte) []nav.Key {
	keys := make([]nav.Key, 0, len(chunk))
	for i := 0; i < len(chunk); i++ {
		switch b := chunk[i]; b {
		case 'q', 'Q', keyCtrlC, keyCtrlD:
			keys = append(keys, nav.KeyQuit)
		case 't', 'T':
			keys = append(keys, nav.KeyTop)
		case 'a', 'A':
			keys = append(keys, nav.KeyAbout)
		case 'f', 'F':
			keys = append(keys, nav.KeyFaq)
		case '\r':
			if i+1 < len(chunk) && chunk[i+1] == '\n' {
				i++
			}
			keys = append(keys, nav.KeyEnter)
		case '\n':
			keys = append(keys, nav.KeyEnter)
		case keyEsc:
			k, n := decodeEscape(chunk[i:])
			keys = append(keys, k)
			i += n - 1
		default:
			keys = append(keys, nav.KeyNone)
		}
	}
	return keys
}

// decodeEscape decodes the sequence starting at seq[0] == ESC and returns the
// key and the number of bytes consumed.
func decodeEscape(seq []byte) (nav.Key, int) {
	if len(seq) < 2 || (seq[1] != '[' && seq[1] != 'O') {
		return nav.KeyEscape, 1
	}
	if seq[1] == 'O' {
		if len(seq) < 3 {
			return nav.KeyNone, 2
		}
		switch seq[2] {
		case 'A':
			return nav.KeyUp, 3
		case 'B':
			return nav.KeyDown, 3
		}
		return nav.KeyNone, 3
	}
	// CSI: parameter and intermediate bytes, then one final byte.
	j := 2
	for j < len(seq) && seq[j] >= 0x20 && seq[j] <= 0x3f {
		j++
	}
	if j >= len(seq) {
		return nav.KeyNone, j
	}
	final := seq[j]
	if final < 0x40 || final > 0x7e {
		return nav.KeyNone, j
	}
	if j == 2 {
		switch final {
		case 'A':
			return nav.KeyUp, 3
		case 'B':
			return nav.KeyDown, 3
		}
	}
	return nav.KeyNone, j + 1
}

func keyNames(keys []nav.Key) []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return names
}
