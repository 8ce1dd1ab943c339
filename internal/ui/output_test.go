package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestOutputPrefixes(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	u := NewWithWriter(&buf)

	u.Info("checking inputs")
	u.Successf("submitted %s", "app.ipa")
	u.Warning("Gemfile not found")
	u.Errorf("exit status %d", 1)

	out := buf.String()
	for _, want := range []string{
		"[INFO] checking inputs\n",
		"[✓] submitted app.ipa\n",
		"[WARNING] Gemfile not found\n",
		"[ERROR] exit status 1\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q, got:\n%s", want, out)
		}
	}
}

func TestCommandQuotesArguments(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	u := NewWithWriter(&buf)
	u.Command([]string{"test-cloud", "submit", "My App.ipa", "--user", "ci@example.com"})

	want := "$ test-cloud submit 'My App.ipa' --user ci@example.com\n"
	if buf.String() != want {
		t.Errorf("Command() = %q, want %q", buf.String(), want)
	}
}

func TestField(t *testing.T) {
	var buf bytes.Buffer
	u := NewWithWriter(&buf)
	u.Field("series", "master")

	if buf.String() != " * series: master\n" {
		t.Errorf("Field() = %q", buf.String())
	}
}

func TestPromptsFailWhenNonInteractive(t *testing.T) {
	u := NewWithWriter(&bytes.Buffer{})
	if !u.IsNonInteractive() {
		t.Fatal("New() should start non-interactive")
	}

	if _, err := u.PromptInputRequired("User", ""); !errors.Is(err, ErrNonInteractive) {
		t.Errorf("PromptInputRequired() error = %v, want ErrNonInteractive", err)
	}
	if _, err := u.PromptPassword("API key"); !errors.Is(err, ErrNonInteractive) {
		t.Errorf("PromptPassword() error = %v, want ErrNonInteractive", err)
	}
	if _, err := u.PromptYesNo("Reset?", false); !errors.Is(err, ErrNonInteractive) {
		t.Errorf("PromptYesNo() error = %v, want ErrNonInteractive", err)
	}
}
