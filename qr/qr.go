// Package qr renders credential payloads as scannable PNG images.
package qr

import (
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

const imageSize = 512

// Renderer satisfies workflow.Renderer.
type Renderer struct{}

// PNG encodes payload as a QR code image.
func (Renderer) PNG(payload string) ([]byte, error) {
	image, err := qrcode.Encode(payload, qrcode.Medium, imageSize)
	if err != nil {
		return nil, errors.Wrap(err, "encode qr code")
	}
	return image, nil
}
