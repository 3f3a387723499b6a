package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextPageSource(t *testing.T) {
	src := NewTextPageSource("Vida : 1")

	text, ok, err := src.NextPage(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Vida : 1", text)

	_, ok, err = src.NextPage(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPDFPageSourceWrongPassword(t *testing.T) {
	pdf := &fakePDF{docs: map[string][]string{"locked": {"x"}}}

	_, err := NewPDFPageSource(pdf, []byte("locked"), "wrong", 3, nil, nopLogger())
	assert.ErrorIs(t, err, ErrBadPassword)
}

func TestPDFPageSourceCanceled(t *testing.T) {
	pdf := &fakePDF{docs: map[string][]string{"stmt": {"IMPORTE :1.00"}}}
	src, err := NewPDFPageSource(pdf, []byte("stmt"), "", 3, nil, nopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = src.NextPage(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, pdf.textCalls)
}
