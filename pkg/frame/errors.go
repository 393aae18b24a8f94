package frame

import "fmt"

// TruncatedHeaderError is returned when the stream ends partway through the
// 5-byte frame header.
type TruncatedHeaderError struct {
	// Read is the number of header bytes actually read before EOF.
	Read int
}

func (e *TruncatedHeaderError) Error() string {
	return fmt.Sprintf("frame: truncated header, read %d of 5 bytes", e.Read)
}

// TruncatedBodyError is returned when the stream ends before the declared
// payload length is satisfied.
type TruncatedBodyError struct {
	Want int
	Read int
}

func (e *TruncatedBodyError) Error() string {
	return fmt.Sprintf("frame: truncated body, read %d of %d bytes", e.Read, e.Want)
}

// OversizedFrameError is returned when a frame's declared or decompressed
// size exceeds the configured ceiling.
type OversizedFrameError struct {
	Limit int
	Got   int
}

func (e *OversizedFrameError) Error() string {
	return fmt.Sprintf("frame: oversized frame, %d bytes exceeds limit of %d", e.Got, e.Limit)
}

// UnknownTagError is returned when a frame's tag sets reserved bits.
type UnknownTagError struct {
	Tag byte
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("frame: unknown tag bits set: 0x%02x", e.Tag)
}
