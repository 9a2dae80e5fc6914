//go:build !fyne

package ui

import (
	"strings"
	"testing"
)

func TestHeadlessRunNamesBuildTag(t *testing.T) {
	err := Run(Env{})
	if err == nil {
		t.Fatal("headless Run must fail")
	}
	msg := err.Error()
	if !strings.Contains(msg, "not built") || !strings.Contains(msg, "-tags fyne") {
		t.Fatalf("unexpected error message: %q", msg)
	}
}
