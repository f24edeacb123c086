//go:build linux

package console

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A
)

var vtPaths = []string{"/dev/tty", "/dev/tty0"}

// Claim switches the active VT to graphics mode and hides the cursor. The
// returned func restores text mode and the cursor.
func Claim(l Logger) (restore func(), err error) {
	if err := setMode(kdGraphics); err != nil {
		return func() {}, err
	}
	if err := writeVT("\x1b[?25l"); err != nil && l != nil {
		l.Errorf("tty", "hide cursor failed: %v", err)
	}
	if l != nil {
		l.Infof("tty", "KD_GRAPHICS set")
	}
	return func() {
		if err := setMode(kdText); err != nil {
			if l != nil {
				l.Errorf("tty", "KD_TEXT failed: %v", err)
			}
			return
		}
		_ = writeVT("\x1b[?25h")
		if l != nil {
			l.Infof("tty", "KD_TEXT restored")
		}
	}, nil
}

func setMode(mode int) error {
	var errs []error
	for _, p := range vtPaths {
		fd, err := unix.Open(p, unix.O_RDONLY, 0)
		if err != nil {
			errs = append(errs, fmt.Errorf("open %s: %w", p, err))
			continue
		}
		err = unix.IoctlSetInt(fd, kdSetMode, mode)
		unix.Close(fd)
		if err != nil {
			errs = append(errs, fmt.Errorf("KDSETMODE %d on %s: %w", mode, p, err))
			continue
		}
		return nil
	}
	return errors.Join(errs...)
}

func writeVT(s string) error {
	var errs []error
	for _, p := range vtPaths {
		f, err := os.OpenFile(p, os.O_WRONLY, 0)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		_, err = f.WriteString(s)
		f.Close()
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return fmt.Errorf("write VT: %w", errors.Join(errs...))
}

// ExitOnKey watches /dev/input/event* and calls onExit once when code is
// pressed. Without input devices it logs and returns.
func ExitOnKey(ctx context.Context, l Logger, code uint16, onExit func()) {
	if onExit == nil {
		return
	}
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		if l != nil {
			l.Infof("input", "no evdev devices found for exit key")
		}
		return
	}

	tvSize := binary.Size(unix.Timeval{})
	var once sync.Once
	trigger := func() {
		once.Do(func() {
			if l != nil {
				l.Infof("input", "exit key pressed")
			}
			onExit()
		})
	}
	for _, p := range paths {
		go watchDevice(ctx, p, tvSize, code, trigger)
	}
}

func watchDevice(ctx context.Context, path string, tvSize int, code uint16, trigger func()) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	defer unix.Close(fd)

	buf := make([]byte, 4096)
	for ctx.Err() == nil {
		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}
		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		if keyPressed(buf[:n], tvSize, code) {
			trigger()
			return
		}
	}
}
