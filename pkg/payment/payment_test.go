package payment

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatHandle(t *testing.T) {
	assert.Equal(t, "@alex-p", FormatHandle("  alex-p "))
	assert.Equal(t, "@alex-p", FormatHandle("@alex-p"))
	assert.Equal(t, "", FormatHandle("   "))
}

func TestValidateHandle(t *testing.T) {
	h, err := ValidateHandle("alex_pay")
	require.NoError(t, err)
	assert.Equal(t, "@alex_pay", h)

	_, err = ValidateHandle("ab")
	assert.ErrorIs(t, err, ErrInvalidHandle)
	_, err = ValidateHandle("has space")
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestDeepLink(t *testing.T) {
	assert.Equal(t, "venmo://paycharge?txn=pay&recipients=alex-p", DeepLink("@alex-p"))
	assert.Equal(t, "venmo://paycharge?txn=pay&recipients=alex-p", DeepLink("alex-p"))
}

func TestQRCodeIsPNG(t *testing.T) {
	png, err := QRCode("@alex-p")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
