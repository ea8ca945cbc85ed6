package bind

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sendInvoicesInput struct {
	OrderID string `json:"orderId" validate:"required"`
	GroupID string `json:"groupId" validate:"required"`
}

func TestJSON(t *testing.T) {
	var in sendInvoicesInput
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"orderId":"o1","groupId":"g1"}`))
	errs, err := JSON(httptest.NewRecorder(), r, &in)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "o1", in.OrderID)

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"orderId":"o1"}`))
	errs, err = JSON(httptest.NewRecorder(), r, &sendInvoicesInput{})
	require.NoError(t, err)
	assert.Contains(t, errs, "groupId")

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"orderId":`))
	_, err = JSON(httptest.NewRecorder(), r, &sendInvoicesInput{})
	assert.ErrorContains(t, err, "invalid JSON")
}
