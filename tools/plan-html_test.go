package tools

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderPlanHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderPlanHTML(testPlan(t), &buf); err != nil {
		t.Fatal(err)
	}

	html := buf.String()
	for _, want := range []string{"points", "near", "nodeName"} {
		if !strings.Contains(html, want) {
			t.Fatalf("no %s in %s", want, html)
		}
	}
}

func TestRenderPlanPage(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderPlanPage(testPlan(t), &buf, nil, true); err != nil {
		t.Fatal(err)
	}

	html := buf.String()
	for _, want := range []string{"<!DOCTYPE html>", "thisPlan", "points"} {
		if !strings.Contains(html, want) {
			t.Fatalf("no %s in page", want)
		}
	}
}
