package utils

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// The managed gateway's streaming endpoint does not speak SSE; it frames
// events in the application/vnd.amazon.eventstream binary encoding. Each
// message is:
//
//	4 bytes  total length (big endian)
//	4 bytes  headers length (big endian)
//	4 bytes  CRC32 of the previous 8 bytes
//	…        headers (name/type/value triples)
//	…        payload (JSON for this API)
//	4 bytes  CRC32 of everything before it
//
// The event name travels in the ":event-type" (or ":exception-type") string
// header; the payload is a plain JSON object.

// maxEventStreamFrame caps a single frame at 16 MB, matching the protocol's
// documented maximum, so a corrupt length prefix cannot trigger a huge
// allocation.
const maxEventStreamFrame = 16 * 1024 * 1024

// header value type codes from the eventstream encoding.
const (
	headerTypeBoolTrue  = 0
	headerTypeBoolFalse = 1
	headerTypeByte      = 2
	headerTypeShort     = 3
	headerTypeInteger   = 4
	headerTypeLong      = 5
	headerTypeByteArray = 6
	headerTypeString    = 7
	headerTypeTimestamp = 8
	headerTypeUUID      = 9
)

// StreamFrame is one decoded eventstream message.
type StreamFrame struct {
	// EventType is the value of the ":event-type" header, or the
	// ":exception-type" header when Exception is true.
	EventType string
	// Exception reports whether the frame carries an exception rather than a
	// normal event (":message-type" == "exception").
	Exception bool
	// Payload is the raw JSON payload of the frame.
	Payload []byte
}

// EventStreamScanner reads vnd.amazon.eventstream frames from an io.Reader.
// It is the binary-framing counterpart of SSEScanner.
type EventStreamScanner struct {
	reader io.Reader
}

// NewEventStreamScanner creates a scanner reading frames from reader.
func NewEventStreamScanner(reader io.Reader) *EventStreamScanner {
	return &EventStreamScanner{reader: reader}
}

// Next returns the next decoded frame. Returns io.EOF at a clean end of
// stream; a stream truncated mid-frame surfaces as io.ErrUnexpectedEOF.
func (s *EventStreamScanner) Next() (*StreamFrame, error) {
	prelude := make([]byte, 12)
	if _, err := io.ReadFull(s.reader, prelude); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("event stream prelude read error: %w", err)
	}

	totalLength := binary.BigEndian.Uint32(prelude[0:4])
	headersLength := binary.BigEndian.Uint32(prelude[4:8])
	preludeCRC := binary.BigEndian.Uint32(prelude[8:12])

	if actual := crc32.ChecksumIEEE(prelude[0:8]); actual != preludeCRC {
		return nil, fmt.Errorf("event stream prelude CRC mismatch: got %08x, want %08x", actual, preludeCRC)
	}
	if totalLength > maxEventStreamFrame || totalLength < 16 || headersLength > totalLength-16 {
		return nil, fmt.Errorf("event stream frame has invalid lengths: total=%d headers=%d", totalLength, headersLength)
	}

	rest := make([]byte, totalLength-12)
	if _, err := io.ReadFull(s.reader, rest); err != nil {
		return nil, fmt.Errorf("event stream frame read error: %w", err)
	}

	messageCRC := binary.BigEndian.Uint32(rest[len(rest)-4:])
	crc := crc32.ChecksumIEEE(prelude)
	crc = crc32.Update(crc, crc32.IEEETable, rest[:len(rest)-4])
	if crc != messageCRC {
		return nil, fmt.Errorf("event stream message CRC mismatch: got %08x, want %08x", crc, messageCRC)
	}

	headers, err := parseEventStreamHeaders(rest[:headersLength])
	if err != nil {
		return nil, err
	}

	frame := &StreamFrame{
		Payload: rest[headersLength : len(rest)-4],
	}
	if headers[":message-type"] == "exception" {
		frame.Exception = true
		frame.EventType = headers[":exception-type"]
	} else {
		frame.EventType = headers[":event-type"]
	}
	return frame, nil
}

// parseEventStreamHeaders decodes the header block into a map of the string
// headers. Non-string header values are skipped over; this API only uses
// string headers for routing.
func parseEventStreamHeaders(block []byte) (map[string]string, error) {
	headers := make(map[string]string, 4)
	offset := 0

	for offset < len(block) {
		if offset+1 > len(block) {
			return nil, fmt.Errorf("event stream header block truncated")
		}
		nameLength := int(block[offset])
		offset++
		if offset+nameLength+1 > len(block) {
			return nil, fmt.Errorf("event stream header name truncated")
		}
		name := string(block[offset : offset+nameLength])
		offset += nameLength

		valueType := block[offset]
		offset++

		switch valueType {
		case headerTypeBoolTrue, headerTypeBoolFalse:
			// No value bytes.
		case headerTypeByte:
			offset++
		case headerTypeShort:
			offset += 2
		case headerTypeInteger:
			offset += 4
		case headerTypeLong, headerTypeTimestamp:
			offset += 8
		case headerTypeUUID:
			offset += 16
		case headerTypeByteArray, headerTypeString:
			if offset+2 > len(block) {
				return nil, fmt.Errorf("event stream header value truncated")
			}
			valueLength := int(binary.BigEndian.Uint16(block[offset : offset+2]))
			offset += 2
			if offset+valueLength > len(block) {
				return nil, fmt.Errorf("event stream header value truncated")
			}
			if valueType == headerTypeString {
				headers[name] = string(block[offset : offset+valueLength])
			}
			offset += valueLength
		default:
			return nil, fmt.Errorf("event stream header %q has unknown value type %d", name, valueType)
		}

		if offset > len(block) {
			return nil, fmt.Errorf("event stream header block truncated")
		}
	}

	return headers, nil
}

// EncodeEventStreamFrame builds a single eventstream message with a
// ":message-type" and ":event-type" (or ":exception-type") string header and
// the given JSON payload. It exists for tests and local fakes of the gateway
// transport; the scanner above is its inverse.
func EncodeEventStreamFrame(eventType string, exception bool, payload []byte) []byte {
	typeHeader := ":event-type"
	messageType := "event"
	if exception {
		typeHeader = ":exception-type"
		messageType = "exception"
	}

	var headers []byte
	headers = appendStringHeader(headers, ":message-type", messageType)
	headers = appendStringHeader(headers, typeHeader, eventType)
	headers = appendStringHeader(headers, ":content-type", "application/json")

	totalLength := 12 + len(headers) + len(payload) + 4
	frame := make([]byte, 0, totalLength)

	prelude := make([]byte, 12)
	binary.BigEndian.PutUint32(prelude[0:4], uint32(totalLength))
	binary.BigEndian.PutUint32(prelude[4:8], uint32(len(headers)))
	binary.BigEndian.PutUint32(prelude[8:12], crc32.ChecksumIEEE(prelude[0:8]))

	frame = append(frame, prelude...)
	frame = append(frame, headers...)
	frame = append(frame, payload...)

	trailer := make([]byte, 4)
	binary.BigEndian.PutUint32(trailer, crc32.ChecksumIEEE(frame))
	return append(frame, trailer...)
}

func appendStringHeader(buf []byte, name, value string) []byte {
	buf = append(buf, byte(len(name)))
	buf = append(buf, name...)
	buf = append(buf, headerTypeString)
	length := make([]byte, 2)
	binary.BigEndian.PutUint16(length, uint16(len(value)))
	buf = append(buf, length...)
	return append(buf, value...)
}
