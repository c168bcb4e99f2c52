package hue_test

import (
	"testing"

	"github.com/rtsched/go-rt-dispatch/indicator/hue"
)

func TestLamp_CloseStopsToggles(t *testing.T) {
	// UDP dial needs no listener; nothing is sent in this test.
	lamp, err := hue.Dial("127.0.0.1:5683", "lamps/1", "#ff0000", nil)
	if err != nil {
		t.Fatal(err)
	}

	lamp.Close()
	lamp.Toggle() // no-op after close, must not panic
	lamp.Close()  // idempotent
}

func TestDial_RejectsInvalidColor(t *testing.T) {
	// Color validation happens before any network dial.
	if _, err := hue.Dial("127.0.0.1:5683", "lamps/1", "not-a-color", nil); err == nil {
		t.Error("invalid hex color must be rejected")
	}
	if _, err := hue.Dial("127.0.0.1:5683", "lamps/1", "# gg0000", nil); err == nil {
		t.Error("malformed hex color must be rejected")
	}
}
