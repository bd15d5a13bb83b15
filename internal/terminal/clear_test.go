package terminal

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinesUsed(t *testing.T) {
	tests := []struct {
		length, width, want int
	}{
		{0, 80, 1},
		{80, 80, 1},
		{81, 80, 2},
		{200, 80, 3},
		{10, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, linesUsed(tt.length, tt.width), "length=%d width=%d", tt.length, tt.width)
	}
}

func TestReadLine(t *testing.T) {
	v, err := readLine(bufio.NewReader(strings.NewReader("acme-prod\r\nrest")))
	require.NoError(t, err)
	assert.Equal(t, "acme-prod", v)

	v, err = readLine(bufio.NewReader(strings.NewReader("no-newline")))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", v)

	_, err = readLine(bufio.NewReader(strings.NewReader("")))
	assert.Error(t, err)
}

func TestReadLineSharedReader(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("myorg-acct\nclient-id\nclient-secret\nrefresh-1\n"))

	var got []string
	for i := 0; i < 4; i++ {
		v, err := readLine(r)
		require.NoError(t, err)
		got = append(got, v)
	}

	assert.Equal(t, []string{"myorg-acct", "client-id", "client-secret", "refresh-1"}, got)
}
