package protocol

import (
	"bytes"
	"strings"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	f := &Frame{Op: FrameData, FragmentedTotalLen: 5, Payload: []byte("hello")}
	var buf bytes.Buffer
	if err := WriteFrame(&buf, f); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Op != f.Op || got.FragmentedTotalLen != f.FragmentedTotalLen || !bytes.Equal(got.Payload, f.Payload) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, f)
	}
}

func TestSplitAndReassembleFrames(t *testing.T) {
	payload := []byte(strings.Repeat("x", MaxSingleFramePayload*2+17))
	frames := SplitFrames(payload)
	if len(frames) < 3 {
		t.Fatalf("expected at least 3 frames, got %d", len(frames))
	}

	var r Reassembler
	var assembled []byte
	for i, f := range frames {
		out, done, err := r.Feed(f)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if done {
			assembled = out
		}
	}
	if !bytes.Equal(assembled, payload) {
		t.Fatalf("reassembled payload mismatch: got %d bytes, want %d", len(assembled), len(payload))
	}
}

func TestReassemblerRejectsOutOfOrderContinuation(t *testing.T) {
	var r Reassembler
	_, _, err := r.Feed(&Frame{Op: FrameContinuation, Payload: []byte("x")})
	if err != ErrFragmentOutOfOrder {
		t.Fatalf("expected ErrFragmentOutOfOrder, got %v", err)
	}
}

func TestOversizeFrameRejected(t *testing.T) {
	f := &Frame{Op: FrameData, Payload: make([]byte, MaxSingleFramePayload+1)}
	var buf bytes.Buffer
	if err := WriteFrame(&buf, f); err != ErrTooLarge {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}
