package ui

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, false)

	l.Debugf("hidden")
	l.Infof("chapter=%s status=%s", "01", "complete")
	l.Warnf("retry\n")
	l.Errorf("boom")

	assert.Equal(t, "[INFO] chapter=01 status=complete\n[WARN] retry\n[ERROR] boom\n", buf.String())

	buf.Reset()
	l.Debug = true
	l.Debugf("shown")
	assert.Equal(t, "[DEBUG] shown\n", buf.String())
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Infof("x")
		l.Debugf("x")
	})
}

func TestBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, PlainBanner(DefaultBanner("https://mxs12.cc")))

	out := buf.String()
	assert.Contains(t, out, "https://mxs12.cc")
	assert.NotContains(t, out, "\033[")

	buf.Reset()
	cfg := DefaultBanner("")
	cfg.Enabled = false
	PrintBanner(&buf, cfg)
	assert.Empty(t, buf.String())
}

func TestProgressHandleFinishes(t *testing.T) {
	pm := NewProgressManager(io.Discard)

	ok := pm.Register("Ch.01")
	ok.Reset(2)
	ok.Update(1, 2, 10, false)
	ok.Update(2, 2, 10, true)
	ok.MarkDone()
	ok.MarkDone()

	bad := pm.Register("Ch.02")
	bad.Reset(3)
	bad.Abort()

	done := make(chan struct{})
	go func() {
		pm.Close()
		pm.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("progress manager did not finish")
	}

	assert.True(t, strings.HasPrefix(ok.prefix, "Ch."))
	assert.Equal(t, int64(20), ok.bytes)
	assert.Equal(t, int64(1), ok.failed)
}

func TestHuman(t *testing.T) {
	assert.Equal(t, "512 B", Human(512))
	assert.Equal(t, "1.50 KB", Human(1536))
	assert.Equal(t, "2.00 MB", Human(2<<20))
	assert.Equal(t, "3.00 GB", Human(3<<30))
	assert.Equal(t, "2048.00 GB", Human(2<<40))
}

func TestStatsPrint(t *testing.T) {
	var s Stats
	s.Chapters.Add(2)
	s.FailedChapters.Add(1)
	s.Images.Add(10)
	s.Bytes.Add(4096)

	var buf bytes.Buffer
	s.Print(&buf, 1500*time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, "Chapters: 2 (1 failed)")
	assert.Contains(t, out, "Images:   10 (0 failed)")
	assert.Contains(t, out, "Data:     4.00 KB")
	assert.Contains(t, out, "Time:     2s")
}
