package prompter

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLine_KeepsBufferedInput(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("like 1\n  draft hi there \nquit"), &out)

	line, err := p.ReadLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "like 1", line)

	line, err = p.ReadLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "draft hi there", line)

	line, err = p.ReadLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "quit", line)

	_, err = p.ReadLine("> ")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> > > > ", out.String())
}

func TestConfirm(t *testing.T) {
	p := New(strings.NewReader("YES\nn\n"), io.Discard)

	ok, err := p.Confirm("Delete post?")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Confirm("Delete post?")
	require.NoError(t, err)
	assert.False(t, ok)
}
