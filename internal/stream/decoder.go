package stream

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"insight/internal/chat"
)

// dataPrefix marks a record that carries a payload.
const dataPrefix = "data: "

// recordSeparator is the fixed separator between records. A record is never
// acted on until its full separator has been observed, since a boundary may
// fall in the middle of a received fragment.
var recordSeparator = []byte("\n\n")

// Payload is one decoded protocol record.
type Payload struct {
	Chunk   string         `json:"chunk"`
	Done    bool           `json:"done"`
	History []chat.Message `json:"chat_history"`
}

// Decoder incrementally splits an unaligned fragment stream into payloads.
// It maintains a rolling buffer across Feed calls; a trailing partial record
// is retained for the next fragment. Malformed records are logged and
// skipped, never aborting the stream.
type Decoder struct {
	buf    []byte
	logger *slog.Logger
}

// NewDecoder creates a Decoder. The logger may be nil.
func NewDecoder(logger *slog.Logger) *Decoder {
	return &Decoder{logger: logger}
}

// Feed appends a fragment to the rolling buffer and returns the payloads of
// every record completed by it, in order.
func (d *Decoder) Feed(fragment []byte) []Payload {
	d.buf = append(d.buf, fragment...)

	var payloads []Payload
	for {
		idx := bytes.Index(d.buf, recordSeparator)
		if idx < 0 {
			return payloads
		}

		record := d.buf[:idx]
		d.buf = d.buf[idx+len(recordSeparator):]

		if p, ok := d.decodeRecord(record); ok {
			payloads = append(payloads, p)
		}
	}
}

// Buffered reports whether an incomplete record is still pending.
func (d *Decoder) Buffered() bool {
	return len(bytes.TrimSpace(d.buf)) > 0
}

func (d *Decoder) decodeRecord(record []byte) (Payload, bool) {
	line := bytes.TrimSpace(record)
	if !bytes.HasPrefix(line, []byte(dataPrefix)) {
		return Payload{}, false
	}

	var p Payload
	if err := json.Unmarshal(line[len(dataPrefix):], &p); err != nil {
		if d.logger != nil {
			d.logger.Warn("skipping malformed stream record", "error", err)
		}
		return Payload{}, false
	}
	return p, true
}
