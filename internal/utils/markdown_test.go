package utils

import (
	"strings"
	"testing"
)

func TestRenderMarkdownBasics(t *testing.T) {
	out := string(RenderMarkdown("**bold** and [a link](https://example.com)"))
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Fatalf("bold lost: %s", out)
	}
	if !strings.Contains(out, `href="https://example.com"`) {
		t.Fatalf("link lost: %s", out)
	}
	if !strings.Contains(out, `target="_blank"`) {
		t.Fatalf("external link missing target: %s", out)
	}
}

func TestRenderMarkdownStripsScripts(t *testing.T) {
	cases := []string{
		`<script>alert(1)</script>`,
		`hello <img src=x onerror="alert(1)">`,
		`[click](javascript:alert(1))`,
	}
	for _, in := range cases {
		out := string(RenderMarkdown(in))
		if strings.Contains(out, "script") || strings.Contains(out, "onerror") || strings.Contains(out, "javascript:") {
			t.Errorf("unsafe output for %q: %s", in, out)
		}
	}
}

func TestRenderMarkdownGFMTable(t *testing.T) {
	src := "| a | b |\n|---|---|\n| 1 | 2 |"
	out := string(RenderMarkdown(src))
	if !strings.Contains(out, "<table>") {
		t.Fatalf("GFM table not rendered: %s", out)
	}
}
