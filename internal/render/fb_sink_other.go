//go:build !linux || !cgo

package render

import (
	"context"
	"errors"
	"image"
)

// FBSink is only available on Linux.
type FBSink struct {
	Device string
	Logger Logger
}

func NewFBSink(device string) *FBSink { return &FBSink{Device: device} }

func (s *FBSink) Start(ctx context.Context) error {
	return errors.New("framebuffer preview is only supported on linux")
}

func (s *FBSink) Stop() error                     { return nil }
func (s *FBSink) Present(frame *image.RGBA) error { return nil }
