// Package payment formats the payer's Venmo details. Money never moves
// through groupcart; participants pay the payer out of band using the
// handle, deep link or QR code produced here.
package payment

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/skip2/go-qrcode"
)

// ErrInvalidHandle is returned for handles Venmo would not accept.
var ErrInvalidHandle = errors.New("payment: invalid venmo handle")

// Venmo usernames are 5 to 30 letters, digits, hyphens or underscores.
var handleRe = regexp.MustCompile(`^@[A-Za-z0-9_-]{5,30}$`)

// QRSize is the edge length in pixels of generated QR codes.
const QRSize = 300

// FormatHandle trims handle and ensures it starts with "@".
func FormatHandle(handle string) string {
	h := strings.TrimSpace(handle)
	if h == "" || strings.HasPrefix(h, "@") {
		return h
	}
	return "@" + h
}

// ValidateHandle formats handle and checks it.
func ValidateHandle(handle string) (string, error) {
	h := FormatHandle(handle)
	if !handleRe.MatchString(h) {
		return "", fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}
	return h, nil
}

// DeepLink opens the Venmo app on a payment to handle.
func DeepLink(handle string) string {
	recipient := strings.TrimPrefix(FormatHandle(handle), "@")
	return "venmo://paycharge?txn=pay&recipients=" + url.QueryEscape(recipient)
}

// QRCode encodes the deep link for handle as a PNG.
func QRCode(handle string) ([]byte, error) {
	png, err := qrcode.Encode(DeepLink(handle), qrcode.Medium, QRSize)
	if err != nil {
		return nil, fmt.Errorf("payment: qr encode: %w", err)
	}
	return png, nil
}
