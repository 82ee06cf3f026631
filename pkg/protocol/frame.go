package protocol

import (
	"encoding/binary"
	"io"
)

// FrameOp identifies the purpose of a stream frame, distinct from the
// Message's own Type: a single logical Message may be split across
// several wire frames.
type FrameOp uint8

const (
	// FrameData carries the first (and possibly only) chunk of a
	// message's serialized payload.
	FrameData FrameOp = 0x00
	// FrameContinuation carries a subsequent chunk of a fragmented
	// message.
	FrameContinuation FrameOp = 0x01
	// FrameEnd carries the final chunk of a fragmented message.
	FrameEnd FrameOp = 0x02
	// FramePing/FramePong are transport-level liveness probes, used by
	// the endpoint registry's sweeper (spec §4.2) over the stream
	// transport (WebSocket has its own PING/PONG opcodes).
	FramePing FrameOp = 0x03
	FramePong FrameOp = 0x04
)

// FrameHeaderSize is the size, in bytes, of a stream frame header:
// {op (1 byte), reserved (1 byte), fragmentedTotalLen (4 bytes),
// payloadLen (4 bytes)}, all big-endian.
const FrameHeaderSize = 10

// MaxSingleFramePayload is the maximum payload carried by one stream
// frame (spec §4.1: "Maximum payload ≤ 40 KiB; oversize → TOO_LARGE").
const MaxSingleFramePayload = 40 * 1024

// Frame is a single stream-transport frame: header plus payload chunk.
type Frame struct {
	Op                 FrameOp
	FragmentedTotalLen uint32 // total length of the reassembled message (SplitFrames sets it on every frame; Feed also accepts 0 on an unfragmented frame)
	Payload            []byte
}

// Encode serializes the frame's header and payload.
func (f *Frame) Encode() []byte {
	buf := make([]byte, FrameHeaderSize+len(f.Payload))
	buf[0] = byte(f.Op)
	buf[1] = 0
	binary.BigEndian.PutUint32(buf[2:6], f.FragmentedTotalLen)
	binary.BigEndian.PutUint32(buf[6:10], uint32(len(f.Payload)))
	copy(buf[FrameHeaderSize:], f.Payload)
	return buf
}

// WriteFrame writes a complete frame to w.
func WriteFrame(w io.Writer, f *Frame) error {
	if len(f.Payload) > MaxSingleFramePayload {
		return ErrTooLarge
	}
	_, err := w.Write(f.Encode())
	return err
}

// ReadFrame reads one complete frame from r.
func ReadFrame(r io.Reader) (*Frame, error) {
	header := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	op := FrameOp(header[0])
	total := binary.BigEndian.Uint32(header[2:6])
	length := binary.BigEndian.Uint32(header[6:10])

	if length > MaxSingleFramePayload {
		return nil, ErrTooLarge
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
	}

	return &Frame{Op: op, FragmentedTotalLen: total, Payload: payload}, nil
}

// MaxAssembledMessage bounds the total size of a message reassembled from
// CONTINUATION frames, independent of the per-frame limit, so a peer
// cannot exhaust memory by drip-feeding an unbounded number of
// max-size frames.
const MaxAssembledMessage = 8 * 1024 * 1024

// Reassembler accumulates FrameData/FrameContinuation/FrameEnd frames
// into one payload, per spec §4.1 ("Messages larger than one frame carry
// CONTINUATION frames terminated by END").
type Reassembler struct {
	buf     []byte
	total   uint32
	started bool
}

// Feed adds one frame's payload to the in-progress message. It returns
// the assembled payload and true once an FrameEnd (or an unfragmented
// FrameData) frame completes the message.
func (r *Reassembler) Feed(f *Frame) ([]byte, bool, error) {
	switch f.Op {
	case FrameData:
		r.buf = append([]byte(nil), f.Payload...)
		r.total = f.FragmentedTotalLen
		r.started = true
		if r.total == 0 || uint32(len(r.buf)) >= r.total {
			return r.take(), true, nil
		}
		return nil, false, nil
	case FrameContinuation, FrameEnd:
		if !r.started {
			return nil, false, ErrFragmentOutOfOrder
		}
		if len(r.buf)+len(f.Payload) > MaxAssembledMessage {
			return nil, false, ErrTooLarge
		}
		r.buf = append(r.buf, f.Payload...)
		if f.Op == FrameEnd {
			return r.take(), true, nil
		}
		return nil, false, nil
	default:
		return nil, false, nil
	}
}

func (r *Reassembler) take() []byte {
	out := r.buf
	r.buf = nil
	r.total = 0
	r.started = false
	return out
}

// SplitFrames splits a serialized message into one or more frames no
// larger than MaxSingleFramePayload, ready to be written with WriteFrame
// in order.
func SplitFrames(payload []byte) []*Frame {
	if len(payload) <= MaxSingleFramePayload {
		return []*Frame{{Op: FrameData, FragmentedTotalLen: uint32(len(payload)), Payload: payload}}
	}

	total := uint32(len(payload))
	var frames []*Frame
	for offset := 0; offset < len(payload); offset += MaxSingleFramePayload {
		end := offset + MaxSingleFramePayload
		if end > len(payload) {
			end = len(payload)
		}
		op := FrameContinuation
		if offset == 0 {
			op = FrameData
		}
		if end == len(payload) {
			op = FrameEnd
		}
		frames = append(frames, &Frame{Op: op, FragmentedTotalLen: total, Payload: payload[offset:end]})
	}
	return frames
}
