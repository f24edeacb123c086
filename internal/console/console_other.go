//go:build !linux

package console

import "context"

func Claim(l Logger) (restore func(), err error) { return func() {}, ErrUnsupported }

func ExitOnKey(ctx context.Context, l Logger, code uint16, onExit func()) {}
