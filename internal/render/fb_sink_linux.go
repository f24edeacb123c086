//go:build linux && cgo

package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"

	fb "github.com/gonutz/framebuffer"
)

// FBSink mirrors every rendered frame onto a Linux framebuffer device,
// scaled with nearest-neighbour sampling to fill the screen.
type FBSink struct {
	Device string
	Logger Logger

	mu    sync.Mutex
	fbDev *fb.Device
}

func NewFBSink(device string) *FBSink {
	if device == "" {
		device = "/dev/fb0"
	}
	return &FBSink{Device: device}
}

func (s *FBSink) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dev, err := fb.Open(s.Device)
	if err != nil {
		return err
	}
	s.fbDev = dev
	if s.Logger != nil {
		bounds := dev.Bounds()
		s.Logger.Infof("fb", "framebuffer %s open, bounds=%dx%d", s.Device, bounds.Dx(), bounds.Dy())
	}
	return nil
}

func (s *FBSink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fbDev != nil {
		s.fbDev.Close()
		s.fbDev = nil
	}
	return nil
}

func (s *FBSink) Present(frame *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fbDev == nil {
		return errors.New("framebuffer not open")
	}
	blitToFB(s.fbDev, frame)
	return nil
}

// blitToFB copies frame to the device via nearest-neighbour sampling.
func blitToFB(dev *fb.Device, frame *image.RGBA) {
	bounds := dev.Bounds()
	fbWidth := bounds.Dx()
	fbHeight := bounds.Dy()
	src := frame.Bounds()
	if fbWidth == 0 || fbHeight == 0 || src.Empty() {
		return
	}
	for y := 0; y < fbHeight; y++ {
		sy := src.Min.Y + (y*src.Dy())/fbHeight
		for x := 0; x < fbWidth; x++ {
			sx := src.Min.X + (x*src.Dx())/fbWidth
			pixel := frame.RGBAAt(sx, sy)
			dev.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
}
