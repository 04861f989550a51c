package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionInfoNeverEmpty(t *testing.T) {
	t.Parallel()

	for name, got := range map[string]string{
		"version": getVersion(),
		"commit":  getCommit(),
		"date":    getDate(),
		"setting": buildSetting("no.such.setting"),
	} {
		if got == "" {
			t.Errorf("%s is empty", name)
		}
	}

	if buildSetting("no.such.setting") != "unknown" {
		t.Error("expected unknown for a missing build setting")
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cmd := NewVersionCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"egocrawl version", "commit:", "built:", "go:"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got %q", want, output)
		}
	}
}
