package wyoming

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// protocolVersion is sent in every event header.
const protocolVersion = "1.5.2"

// maxHeader bounds the JSON header line of an incoming event.
const maxHeader = 64 << 10

// Event is one Wyoming protocol message.
//
// On the wire an event is a JSON header line, followed by data_length bytes
// of JSON data and payload_length bytes of binary payload:
//
//	{"type": "...", "data_length": N, "payload_length": M}\n
//	<data bytes><payload bytes>
type Event struct {
	Type    string
	Data    map[string]any
	Payload []byte
}

type header struct {
	Type          string         `json:"type"`
	Version       string         `json:"version,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
	DataLength    int            `json:"data_length,omitempty"`
	PayloadLength int            `json:"payload_length,omitempty"`
}

// WriteEvent sends e over w.
func WriteEvent(w io.Writer, e Event) error {
	h := header{Type: e.Type, Version: protocolVersion, PayloadLength: len(e.Payload)}

	var data []byte
	if len(e.Data) > 0 {
		var err error
		if data, err = json.Marshal(e.Data); err != nil {
			return fmt.Errorf("marshalling event data: %w", err)
		}
		h.DataLength = len(data)
	}

	line, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshalling event header: %w", err)
	}
	line = append(line, '\n')
	line = append(line, data...)
	line = append(line, e.Payload...)
	_, err = w.Write(line)
	return err
}

// ReadEvent reads one event from r. Data sent inline in the header is
// merged with data sent after it.
func ReadEvent(r *bufio.Reader) (Event, error) {
	line, err := readLine(r)
	if err != nil {
		return Event{}, err
	}

	var h header
	if err := json.Unmarshal(line, &h); err != nil {
		return Event{}, fmt.Errorf("unmarshalling event header: %w", err)
	}
	if h.Type == "" {
		return Event{}, fmt.Errorf("event header without type: %q", line)
	}
	if h.DataLength < 0 || h.PayloadLength < 0 {
		return Event{}, fmt.Errorf("negative length in event header: %q", line)
	}

	e := Event{Type: h.Type, Data: h.Data}
	if h.DataLength > 0 {
		buf := make([]byte, h.DataLength)
		if _, err := io.ReadFull(r, buf); err != nil {
			return Event{}, fmt.Errorf("reading event data: %w", err)
		}
		var extra map[string]any
		if err := json.Unmarshal(buf, &extra); err != nil {
			return Event{}, fmt.Errorf("unmarshalling event data: %w", err)
		}
		if e.Data == nil {
			e.Data = extra
		} else {
			for k, v := range extra {
				e.Data[k] = v
			}
		}
	}
	if h.PayloadLength > 0 {
		e.Payload = make([]byte, h.PayloadLength)
		if _, err := io.ReadFull(r, e.Payload); err != nil {
			return Event{}, fmt.Errorf("reading event payload: %w", err)
		}
	}
	return e, nil
}

func readLine(r *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return nil, err
		}
		line = append(line, chunk...)
		if len(line) > maxHeader {
			return nil, fmt.Errorf("event header exceeds %d bytes", maxHeader)
		}
		if !isPrefix {
			return line, nil
		}
	}
}
