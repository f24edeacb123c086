package render

import (
	"errors"
	"image"

	"github.com/skip2/go-qrcode"
)

const defaultQRCodeSizePx = 256

var ErrEmptyPayload = errors.New("qr code payload is empty")

// QRCode returns a QR code image encoding payload, typically the editor URL
// so a phone can open it. Sizes <= 0 use 256px.
func QRCode(payload string, sizePx int) (image.Image, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	if sizePx <= 0 {
		sizePx = defaultQRCodeSizePx
	}

	qrCode, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	return qrCode.Image(sizePx), nil
}
