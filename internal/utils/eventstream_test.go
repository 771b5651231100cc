package utils

import (
	"bytes"
	"io"
	"testing"
)

// TestEventStreamRoundTrip checks that encoded frames decode back with the
// same event type, exception flag, and payload, and that the scanner yields
// io.EOF at a clean end of stream.
func TestEventStreamRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(EncodeEventStreamFrame("messageStart", false, []byte(`{"role":"assistant"}`)))
	buf.Write(EncodeEventStreamFrame("contentBlockDelta", false, []byte(`{"delta":{"text":"Hi"}}`)))
	buf.Write(EncodeEventStreamFrame("throttlingException", true, []byte(`{"message":"slow down"}`)))

	scanner := NewEventStreamScanner(&buf)

	frame, err := scanner.Next()
	if err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if frame.EventType != "messageStart" || frame.Exception {
		t.Errorf("first frame: got (%q, exception=%v)", frame.EventType, frame.Exception)
	}
	if string(frame.Payload) != `{"role":"assistant"}` {
		t.Errorf("first payload: got %q", frame.Payload)
	}

	frame, err = scanner.Next()
	if err != nil {
		t.Fatalf("second frame: %v", err)
	}
	if frame.EventType != "contentBlockDelta" {
		t.Errorf("second frame type: got %q", frame.EventType)
	}

	frame, err = scanner.Next()
	if err != nil {
		t.Fatalf("third frame: %v", err)
	}
	if !frame.Exception || frame.EventType != "throttlingException" {
		t.Errorf("third frame: got (%q, exception=%v)", frame.EventType, frame.Exception)
	}

	if _, err := scanner.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF after last frame, got %v", err)
	}
}

// TestEventStreamCorruption checks that a flipped payload byte is caught by
// the message CRC rather than decoded silently.
func TestEventStreamCorruption(t *testing.T) {
	frame := EncodeEventStreamFrame("messageStop", false, []byte(`{"stopReason":"end_turn"}`))
	frame[len(frame)-6] ^= 0xff // corrupt a payload byte, leave the CRC intact

	if _, err := NewEventStreamScanner(bytes.NewReader(frame)).Next(); err == nil {
		t.Fatal("expected CRC mismatch error, got nil")
	}
}

// TestEventStreamTruncated checks that a frame cut off mid-payload surfaces
// as an error, not as a silent EOF.
func TestEventStreamTruncated(t *testing.T) {
	frame := EncodeEventStreamFrame("messageStop", false, []byte(`{"stopReason":"end_turn"}`))
	if _, err := NewEventStreamScanner(bytes.NewReader(frame[:len(frame)-8])).Next(); err == nil {
		t.Fatal("expected truncation error, got nil")
	}
}

// TestTruncateString pins the ellipsis behaviour used by error previews.
func TestTruncateString(t *testing.T) {
	if got := TruncateString("hello", 10); got != "hello" {
		t.Errorf("short string: got %q", got)
	}
	if got := TruncateString("hello world", 5); got != "hello..." {
		t.Errorf("truncated string: got %q", got)
	}
	if got := TruncateString("hello", 0); got != "" {
		t.Errorf("zero budget: got %q", got)
	}
}
