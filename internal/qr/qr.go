// Package qr renders the per-product QR payload and image.
package qr

import (
	"encoding/base64"
	"fmt"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"
)

// Payload builds the textual QR content for a product. The value is
// rendered with the shortest decimal representation (9.99 -> "$9.99").
func Payload(name, productID string, value float64) string {
	return fmt.Sprintf("Product: %s\nID: %s\nValue: $%s",
		name, productID, strconv.FormatFloat(value, 'f', -1, 64))
}

// Encode returns the payload and a base64-encoded PNG encoding exactly
// that payload. It reads no persisted state; an encoder failure must
// abort the whole triggering write.
func Encode(name, productID string, value float64) (data string, image string, err error) {
	data = Payload(name, productID, value)
	png, err := qrcode.Encode(data, qrcode.Medium, 256)
	if err != nil {
		return "", "", fmt.Errorf("encode qr: %w", err)
	}
	return data, base64.StdEncoding.EncodeToString(png), nil
}
