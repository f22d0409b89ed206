package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderMarkdown_PlainWhenNotATerminal(t *testing.T) {
	var out bytes.Buffer
	c := &Context{Out: &out}

	got, err := c.RenderMarkdown("# Morning\n\n> Breathe out.\n")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "\x1b[") {
		t.Errorf("escape sequences in piped output: %q", got)
	}
	if !strings.Contains(got, "Breathe out.") || !strings.Contains(got, "Morning") {
		t.Errorf("rendered = %q", got)
	}
}
