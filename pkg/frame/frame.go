package frame

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"io"
)

// Tag values for the low bit of the frame header's tag byte.
const (
	// TagMessage marks the payload as raw Protobuf bytes for the next typed
	// message.
	TagMessage byte = 0x00

	// TagError marks the payload as a UTF-8 JSON blob describing a
	// vendor-side error.
	TagError byte = 0x01
)

const (
	// flagGzip is bit 1 of the tag byte; when set, the payload is
	// gzip-compressed and must be inflated before interpreting per the low
	// bit.
	flagGzip byte = 0x02

	// reservedMask covers bits 2-7, which must be zero.
	reservedMask byte = 0xfc
)

const (
	headerSize = 5

	// CompressionThreshold is the payload size above which a caller may
	// choose to gzip the payload and set the gzip bit.
	CompressionThreshold = 16 * 1024

	// MaxCompressedFrameSize is the maximum size of a frame's payload as it
	// appears on the wire (before inflation, if any).
	MaxCompressedFrameSize = 32 * 1024 * 1024

	// MaxDecompressedFrameSize caps the inflated size of a gzip frame.
	MaxDecompressedFrameSize = 64 * 1024 * 1024
)

// IsError reports whether tag identifies an error frame.
func IsError(tag byte) bool {
	return tag&0x01 != 0
}

// IsGzip reports whether tag identifies a gzip-compressed payload.
func IsGzip(tag byte) bool {
	return tag&flagGzip != 0
}

// EncodeFrame builds the 5-byte header plus payload for one frame. tag must
// be TagMessage or TagError, optionally OR'd with the gzip flag; reserved
// bits must be zero. payload is written as-is — if the gzip flag is set the
// caller is responsible for having already compressed it.
func EncodeFrame(tag byte, payload []byte) ([]byte, error) {
	if tag&reservedMask != 0 {
		return nil, &UnknownTagError{Tag: tag}
	}
	if len(payload) > MaxCompressedFrameSize {
		return nil, &OversizedFrameError{Limit: MaxCompressedFrameSize, Got: len(payload)}
	}

	buf := make([]byte, headerSize+len(payload))
	buf[0] = tag
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(payload)))
	copy(buf[5:], payload)
	return buf, nil
}

// EncodeMessage frames a Protobuf message payload, transparently
// gzip-compressing it (and setting the gzip bit) when it exceeds
// CompressionThreshold.
func EncodeMessage(payload []byte) ([]byte, error) {
	return encodeWithAutoCompress(TagMessage, payload)
}

// EncodeError frames a JSON error payload, transparently gzip-compressing it
// when it exceeds CompressionThreshold.
func EncodeError(payload []byte) ([]byte, error) {
	return encodeWithAutoCompress(TagError, payload)
}

func encodeWithAutoCompress(baseTag byte, payload []byte) ([]byte, error) {
	if len(payload) <= CompressionThreshold {
		return EncodeFrame(baseTag, payload)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return EncodeFrame(baseTag|flagGzip, buf.Bytes())
}

// ReadFrame reads exactly one frame from r: a 5-byte header followed by its
// payload. If the gzip bit is set, the payload is inflated (capped at
// MaxDecompressedFrameSize) before being returned; the returned tag always
// reflects the gzip bit as read off the wire so callers can tell the
// payload was originally compressed.
//
// ReadFrame returns io.EOF when r is exhausted cleanly between frames (zero
// bytes read of the header). A partial header or body read is reported as
// *TruncatedHeaderError / *TruncatedBodyError, never io.EOF, so callers can
// distinguish "stream ended" from "stream ended unexpectedly".
//
// ReadFrame does not itself watch a context — callers needing cancellation
// mid-read should arrange for r to unblock on context cancellation (as
// http.Response.Body already does) and treat the resulting error
// accordingly; framing is a pure codec, not a scheduling concern.
func ReadFrame(r io.Reader) (tag byte, payload []byte, err error) {
	var header [headerSize]byte
	n, err := io.ReadFull(r, header[:])
	if err != nil {
		if n == 0 && err == io.EOF {
			return 0, nil, io.EOF
		}
		return 0, nil, &TruncatedHeaderError{Read: n}
	}

	tag = header[0]
	if tag&reservedMask != 0 {
		return 0, nil, &UnknownTagError{Tag: tag}
	}

	length := binary.BigEndian.Uint32(header[1:5])
	if length > MaxCompressedFrameSize {
		return 0, nil, &OversizedFrameError{Limit: MaxCompressedFrameSize, Got: int(length)}
	}

	body := make([]byte, length)
	n, err = io.ReadFull(r, body)
	if err != nil {
		return 0, nil, &TruncatedBodyError{Want: int(length), Read: n}
	}

	if !IsGzip(tag) {
		return tag, body, nil
	}

	inflated, err := inflate(body)
	if err != nil {
		return 0, nil, err
	}
	return tag, inflated, nil
}

func inflate(compressed []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	limited := io.LimitReader(gz, MaxDecompressedFrameSize+1)
	out, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if len(out) > MaxDecompressedFrameSize {
		return nil, &OversizedFrameError{Limit: MaxDecompressedFrameSize, Got: len(out)}
	}
	return out, nil
}
