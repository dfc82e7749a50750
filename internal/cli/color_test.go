package cli

import "testing"

func TestPaintDisabledReturnsPlainText(t *testing.T) {
	got := Paint(false, SeverityFail, "boom")
	if got != "boom" {
		t.Fatalf("Paint with color disabled = %q, want unmodified text", got)
	}
}

func TestPaintEnabledWrapsInColor(t *testing.T) {
	got := Paint(true, SeverityOK, "ok")
	if got == "ok" || len(got) <= len("ok") {
		t.Fatalf("Paint with color enabled should wrap text, got %q", got)
	}
}

func TestColorEnabledRespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if ColorEnabled() {
		t.Fatal("ColorEnabled() should be false when NO_COLOR is set")
	}
}
