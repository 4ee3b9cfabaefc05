// Package qrencode renders a session token as a scannable code. The
// session core only mints token strings; this is the encoder bolted on
// top of it.
package qrencode

import qrcode "github.com/skip2/go-qrcode"

const (
	// DefaultSize is used when the caller does not ask for a size.
	DefaultSize = 256
	// MaxSize bounds caller-supplied sizes so a single request cannot
	// demand an arbitrarily large image.
	MaxSize = 1024
)

// PNG renders content as a QR PNG of the given pixel size.
func PNG(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}
