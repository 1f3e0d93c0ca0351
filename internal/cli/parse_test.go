package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStream(t *testing.T) {
	input := strings.Join([]string{
		"-- Boot 0123456789abcdef0123456789abcdef --",
		"May 29 18:37:40 fedora kernel: Linux version 6.8.9",
		"May 29 18:37:47 fedora kernel: foo[1]: segfault at 0 ip 0 sp 0 error 4 likely on CPU 7 (core 7, socket 0)",
		"",
	}, "\n")

	records, err := parseStream(strings.NewReader(input), -4)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, -4, records[0].Boot)
	assert.Equal(t, 7, records[0].Core)
}

func TestParseStreamEmpty(t *testing.T) {
	records, err := parseStream(strings.NewReader(""), 0)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
