package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSHA256Hex(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", SHA256Hex(nil))
	assert.Equal(t, SHA256Hex([]byte("abc")), SHA256Hex([]byte("abc")))
	assert.Len(t, SHA256Hex([]byte("abc")), 64)
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Limit: 50, Offset: 0}, NewPagination(0, -3, 50, 100))
	assert.Equal(t, Pagination{Limit: 100, Offset: 20}, NewPagination(500, 20, 50, 100))
	assert.Equal(t, Pagination{Limit: 10, Offset: 5}, NewPagination(10, 5, 50, 100))
}
