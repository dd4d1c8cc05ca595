package progress

import (
	"bytes"
	"testing"
)

func TestLineReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &LineReporter{Description: "Uploading samples", Out: &buf}

	r.Start(2)
	r.Update(1, "cats/a.jpg")
	r.Update(2, "dogs/b.jpg")
	r.Finish()

	want := "Uploading samples: 2 items\n[1/2] cats/a.jpg\n[2/2] dogs/b.jpg\nUploading samples: done\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestNewReporterCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter("x").(*LineReporter); !ok {
		t.Error("expected LineReporter when CI is set")
	}

	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	if _, ok := NewReporter("x").(*TerminalReporter); !ok {
		t.Error("expected TerminalReporter outside CI")
	}
}
