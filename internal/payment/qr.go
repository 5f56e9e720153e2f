package payment

import (
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

// RenderQR encodes a VietQR payload as a PNG image of size x size pixels.
func RenderQR(payload string, size int) ([]byte, error) {
	if payload == "" {
		return nil, errors.New("empty qr payload")
	}
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, errors.Wrap(err, "encode qr code")
	}
	return png, nil
}
