// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package vedirect

// TextField is one label/value pair of a Text-mode frame.
type TextField struct {
	Label string
	Value string
}

// TextFrame is one checksum-valid Text-mode frame. Fields keep wire order;
// duplicated labels (AR appears twice) are preserved.
type TextFrame struct {
	Fields []TextField
}

// Get returns the value of the first field with the given label.
func (f *TextFrame) Get(label string) (string, bool) {
	for _, fld := range f.Fields {
		if fld.Label == label {
			return fld.Value, true
		}
	}
	return "", false
}

// IsHistory reports whether the frame carries the H1–H18 history fields
// rather than the per-second telemetry.
func (f *TextFrame) IsHistory() bool {
	_, ok := f.Get("H1")
	return ok
}

// textReader states.
const (
	textLabel = iota
	textValue
	textChecksum
)

// TextReader incrementally decodes VE.Direct Text frames from a byte
// stream. Feed it one byte at a time; it returns a frame whenever a
// Checksum field closes a frame whose bytes sum to 0 mod 256, and silently
// discards corrupted frames. Hex frames interleaved in the stream corrupt
// the running sum and are shed the same way.
type TextReader struct {
	state  int
	sum    byte
	label  []byte
	value  []byte
	fields []TextField
}

// NewTextReader returns a reader waiting for the start of a frame.
func NewTextReader() *TextReader {
	return &TextReader{}
}

// Feed consumes one stream byte and returns a completed frame or nil.
func (r *TextReader) Feed(b byte) *TextFrame {
	r.sum += b

	switch r.state {
	case textLabel:
		switch b {
		case '\r', '\n':
			if len(r.label) > 0 {
				// Field broken mid-label; restart the field.
				r.label = r.label[:0]
			}
		case '\t':
			if string(r.label) == "Checksum" {
				r.state = textChecksum
			} else {
				r.state = textValue
			}
		default:
			if len(r.label) >= 32 {
				// No real label is this long; resync.
				r.reset()
				return nil
			}
			r.label = append(r.label, b)
		}
		return nil

	case textValue:
		if b == '\r' || b == '\n' {
			r.fields = append(r.fields, TextField{
				Label: string(r.label),
				Value: string(r.value),
			})
			r.label = r.label[:0]
			r.value = r.value[:0]
			r.state = textLabel
			return nil
		}
		r.value = append(r.value, b)
		return nil

	case textChecksum:
		// b is the raw checksum byte, already folded into the sum.
		var frame *TextFrame
		if r.sum == 0 && len(r.fields) > 0 {
			frame = &TextFrame{Fields: r.fields}
		}
		r.reset()
		return frame
	}

	r.reset()
	return nil
}

func (r *TextReader) reset() {
	r.state = textLabel
	r.sum = 0
	r.label = r.label[:0]
	r.value = r.value[:0]
	r.fields = nil
}
