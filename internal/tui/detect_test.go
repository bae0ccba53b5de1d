package tui

import (
	"testing"
)

func TestDetectMode_TWEETBENCH_NON_INTERACTIVE(t *testing.T) {
	t.Setenv("TWEETBENCH_NON_INTERACTIVE", "1")
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "")

	if got := DetectMode(); got != ModeNonInteractive {
		t.Errorf("DetectMode() = %d, want ModeNonInteractive", got)
	}
}

func TestDetectMode_CI(t *testing.T) {
	t.Setenv("TWEETBENCH_NON_INTERACTIVE", "")
	t.Setenv("CI", "true")
	t.Setenv("NO_COLOR", "")

	if got := DetectMode(); got != ModeNonInteractive {
		t.Errorf("DetectMode() = %d, want ModeNonInteractive", got)
	}
}

func TestDetectMode_NO_COLOR(t *testing.T) {
	t.Setenv("TWEETBENCH_NON_INTERACTIVE", "")
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "1")

	if got := DetectMode(); got != ModeNonInteractive {
		t.Errorf("DetectMode() = %d, want ModeNonInteractive", got)
	}
}

func TestDetectMode_NoTerminal(t *testing.T) {
	// In test context, stdin/stdout are not terminals
	t.Setenv("TWEETBENCH_NON_INTERACTIVE", "")
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "")

	if got := DetectMode(); got != ModeNonInteractive {
		t.Errorf("DetectMode() = %d, want ModeNonInteractive (no terminal in test)", got)
	}
}

func TestIsInteractive_ReturnsFalseInTests(t *testing.T) {
	t.Setenv("TWEETBENCH_NON_INTERACTIVE", "")
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "")

	if IsInteractive() {
		t.Error("IsInteractive() = true in test environment, want false")
	}
}

func TestLoadDisplay_NonInteractiveIsSilent(t *testing.T) {
	t.Setenv("TWEETBENCH_NON_INTERACTIVE", "1")

	d := NewLoadDisplay(100)
	// Must be a no-op without a terminal.
	d.Update(10, 1)
	d.Finish()
}
