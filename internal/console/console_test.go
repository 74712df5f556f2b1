// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_UTF8Passthrough(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, "")
	require.NoError(t, err)

	_, err = w.Write([]byte("Über Modelle 日本\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "Über Modelle 日本\n", buf.String())
}

func TestWriter_UTF8ReplacesIllFormed(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, "utf-8")
	require.NoError(t, err)

	_, err = w.Write([]byte("bad \xff byte"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "bad � byte", buf.String())
}

func TestWriter_UnencodableRunesReplaced(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, "windows-1252")
	require.NoError(t, err)

	_, err = w.Write([]byte("Café 日本"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("Caf\xe9 ")), "%q", out)
	// Each CJK rune collapses to a single replacement byte.
	assert.Len(t, out, len("Caf\xe9 ")+2)
}

func TestWriter_UnknownEncoding(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, "klingon-8")
	assert.Error(t, err)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "PDF: Short", Label("PDF: ", "Short"))
	long := strings.Repeat("x", 45)
	assert.Equal(t, "PDF: "+strings.Repeat("x", 40)+"...", Label("PDF: ", long))
}

func TestLines_Log(t *testing.T) {
	var buf bytes.Buffer
	l := NewLines(&buf)
	l.Start()
	c := l.Transfer("x", 10)
	c.Add(5)
	c.Done()
	l.Log("ok: %s", "paper")
	l.Stop()
	assert.Equal(t, "ok: paper\n", buf.String())
}
