package ui

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, false)

	l.Debugf("hidden %d\n", 1)
	l.Infof("shown %d\n", 2)
	l.Warnf("careful %s", "x")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "careful x")
	assert.NotContains(t, out, "2\n\n")

	buf.Reset()
	dbg := NewLoggerTo(&buf, true)
	dbg.Debugf("visible")
	dbg.Errorf("broken %v", io.EOF)
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "broken EOF")
}

func TestProgressHandleLifecycle(t *testing.T) {
	pm := NewProgressManager(io.Discard)

	h := pm.Register("item-one")
	h.SetTotal(3)
	h.Update(1, 3, 100)
	h.Update(3, 0, 300)
	assert.Equal(t, int64(3), h.total.Load())
	assert.Equal(t, int64(300), h.bytes.Load())

	h.MarkDone()
	assert.True(t, h.done())
	h.Update(0, 9, 0)
	assert.Equal(t, int64(3), h.total.Load())

	failed := pm.Register("item-two")
	failed.SetTotal(5)
	failed.Abort()
	failed.MarkDone()
	assert.True(t, failed.done())

	pm.Close()
}
