package perf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrackWritesWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	require.True(t, IsEnabled())
	Track("render", func() {})
	require.Contains(t, buf.String(), ": render: ")
	require.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestDisabledIsSilent(t *testing.T) {
	SetOutput(nil)
	require.False(t, IsEnabled())
	Start("noop").Stop()
	Log("nothing %d", 1)
}
