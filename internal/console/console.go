// Package console prepares the Linux virtual terminal for the framebuffer
// preview: it hides the text console while frames are mirrored and lets a
// key press on an attached keyboard stop the server.
package console

import (
	"encoding/binary"
	"errors"
)

// ErrUnsupported is returned where there is no virtual terminal to control.
var ErrUnsupported = errors.New("console: not supported on this platform")

// KeyF4 is the evdev code of F4 (linux/input-event-codes.h).
const KeyF4 = 62

const evKey = 0x01

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// keyPressed scans buf for input_event records reporting a press of code.
// Each record is a timeval of tvSize bytes followed by type, code and value.
func keyPressed(buf []byte, tvSize int, code uint16) bool {
	eventSize := tvSize + 2 + 2 + 4
	for off := 0; off+eventSize <= len(buf); off += eventSize {
		rec := buf[off : off+eventSize]
		typ := binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
		c := binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4])
		value := int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8]))
		if typ == evKey && c == code && value == 1 {
			return true
		}
	}
	return false
}
