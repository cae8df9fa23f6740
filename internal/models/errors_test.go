package models

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: http.StatusNotFound, Detail: "Not found.", Code: "not_found"}

	assert.Contains(t, err.Error(), "Not found.")
	assert.Contains(t, err.Error(), "not_found")
	assert.True(t, IsNotFound(err))

	other := &APIError{StatusCode: http.StatusForbidden, Detail: "nope"}
	assert.False(t, IsNotFound(other))
	assert.True(t, IsNotFound(ErrNotFound))
}
