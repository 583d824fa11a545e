package server

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Requests and responses travel as frames: a 4-byte little-endian length
// followed by that many bytes of UTF-8 text. An empty frame is invalid.

// ReadFrame reads one frame from r, rejecting frames larger than max
// bytes.
func ReadFrame(r io.Reader, max int) (string, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return "", err
	}
	size := binary.LittleEndian.Uint32(header[:])
	if size == 0 {
		return "", fmt.Errorf("empty frame")
	}
	// Compare before converting: a size above MaxInt32 must not wrap
	// negative on 32-bit platforms.
	if uint64(size) > uint64(max) {
		return "", fmt.Errorf("frame of %d bytes exceeds limit of %d", size, max)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return "", fmt.Errorf("short frame: %w", err)
	}
	return string(payload), nil
}

// WriteFrame writes one frame to w.
func WriteFrame(w io.Writer, payload string) error {
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, payload)
	return err
}
