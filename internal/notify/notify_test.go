package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinterWritesOneLinePerNotice(t *testing.T) {
	var buf bytes.Buffer
	p := Printer{W: &buf}

	p.Notify(Successf("Added %dml", 250))
	p.Notify(Warnf("You must be logged in to view meals."))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Added 250ml")
	assert.Contains(t, lines[1], "logged in")
}

func TestRenderUnknownLevelFallsBack(t *testing.T) {
	out := Render(Notice{Level: "loud", Text: "hello"})
	assert.Contains(t, out, "hello")
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Notify(Errorf("Failed to fetch %s", "exercises"))
	assert.Equal(t, []Notice{{Level: Error, Text: "Failed to fetch exercises"}}, r.Notices)
}
