package kwin

import (
	"strings"
	"testing"

	"github.com/Christopher-Hayes/active-window/window"
)

func TestParseReport(t *testing.T) {
	payload := `[
		{"active":false,"clientGeometry":{"x":0,"y":0,"width":1920,"height":32},"pid":900,"resourceClass":"plasmashell","caption":"Panel"},
		{"active":true,"clientGeometry":{"x":10,"y":20,"width":800,"height":600},"pid":1234,"resourceClass":"konsole","caption":"~ : bash"},
		{"active":false,"clientGeometry":{"x":100.4,"y":50.6,"width":640.5,"height":480},"pid":77,"resourceClass":"dolphin","caption":"Home"}
	]`

	descs, err := ParseReport(payload)
	if err != nil {
		t.Fatalf("ParseReport() error = %v", err)
	}
	if len(descs) != 3 {
		t.Fatalf("expected 3 descriptors, got %d", len(descs))
	}

	summary, ok := window.Active(descs)
	if !ok {
		t.Fatal("expected an active window")
	}
	want := window.Summary{Extents: [4]int{10, 20, 800, 600}, PID: 1234, Name: "konsole"}
	if summary != want {
		t.Errorf("Active() = %+v, want %+v", summary, want)
	}

	// fractional geometry is rounded
	if got := descs[2].Geometry; got != (window.Geometry{X: 100, Y: 51, Width: 641, Height: 480}) {
		t.Errorf("rounded geometry = %+v", got)
	}
	if descs[1].Title != "~ : bash" {
		t.Errorf("caption not carried as title: %q", descs[1].Title)
	}
}

func TestParseReportEmpty(t *testing.T) {
	descs, err := ParseReport("[]")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := window.Active(descs); ok {
		t.Error("empty report must not yield an active window")
	}
}

func TestParseReportInvalid(t *testing.T) {
	if _, err := ParseReport("undefined"); err == nil {
		t.Error("expected error for non-JSON report")
	}
}

func TestRenderScript(t *testing.T) {
	script, err := renderScript(":1.42")
	if err != nil {
		t.Fatalf("renderScript() error = %v", err)
	}
	s := string(script)

	want := `callDBus(":1.42", "/ActiveWindow/Report", "io.github.activewindow.Report", "Report", JSON.stringify(windows));`
	if !strings.Contains(s, want) {
		t.Errorf("script does not call back correctly, got:\n%s", s)
	}
	if !strings.Contains(s, "workspace.windowList") || !strings.Contains(s, "workspace.clientList") {
		t.Error("script should support both Plasma 6 and Plasma 5 window lists")
	}
	if strings.Contains(s, "{{") {
		t.Error("script still contains template markers")
	}
}

func TestReceiverKeepsFirstReport(t *testing.T) {
	r := &receiver{reports: make(chan string, 1)}
	if err := r.Report("[1]"); err != nil {
		t.Fatal(err)
	}
	if err := r.Report("[2]"); err != nil {
		t.Fatal(err)
	}
	if got := <-r.reports; got != "[1]" {
		t.Errorf("got %q, want first report", got)
	}
	select {
	case extra := <-r.reports:
		t.Errorf("unexpected second report %q", extra)
	default:
	}
}
