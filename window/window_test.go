package window

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func konsole() Descriptor {
	return Descriptor{
		Active:   true,
		Geometry: Geometry{X: 10, Y: 20, Width: 800, Height: 600},
		PID:      1234,
		Class:    "konsole",
		Title:    "~ : bash",
	}
}

// TestActive covers the lookup rules for single, missing and duplicate active windows
func TestActive(t *testing.T) {
	firefox := Descriptor{Geometry: Geometry{X: 0, Y: 0, Width: 1920, Height: 1080}, PID: 42, Class: "firefox"}
	dolphin := Descriptor{Geometry: Geometry{X: 5, Y: 5, Width: 300, Height: 200}, PID: 77, Class: "dolphin"}

	secondActive := dolphin
	secondActive.Active = true

	tests := []struct {
		name   string
		descs  []Descriptor
		want   Summary
		wantOK bool
	}{
		{
			name:   "single active among inactive",
			descs:  []Descriptor{firefox, konsole(), dolphin},
			want:   Summary{Extents: [4]int{10, 20, 800, 600}, PID: 1234, Name: "konsole"},
			wantOK: true,
		},
		{
			name:   "no active window",
			descs:  []Descriptor{firefox, dolphin},
			wantOK: false,
		},
		{
			name:   "empty list",
			descs:  nil,
			wantOK: false,
		},
		{
			name:   "first active wins",
			descs:  []Descriptor{firefox, konsole(), secondActive},
			want:   Summary{Extents: [4]int{10, 20, 800, 600}, PID: 1234, Name: "konsole"},
			wantOK: true,
		},
		{
			name:   "first active wins in other order",
			descs:  []Descriptor{secondActive, konsole()},
			want:   Summary{Extents: [4]int{5, 5, 300, 200}, PID: 77, Name: "dolphin"},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Active(tt.descs)
			if ok != tt.wantOK {
				t.Fatalf("Active() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Active() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// TestActiveEmptyMatchesAllInactive checks that both kinds of "nothing" look the same
func TestActiveEmptyMatchesAllInactive(t *testing.T) {
	emptySummary, emptyOK := Active([]Descriptor{})
	inactive := konsole()
	inactive.Active = false
	inactiveSummary, inactiveOK := Active([]Descriptor{inactive})

	if emptyOK || inactiveOK {
		t.Fatalf("expected no active window, got ok=%v/%v", emptyOK, inactiveOK)
	}
	if emptySummary != inactiveSummary {
		t.Errorf("empty result %+v differs from all-inactive result %+v", emptySummary, inactiveSummary)
	}
}

func TestActiveDoesNotModifyInput(t *testing.T) {
	descs := []Descriptor{konsole()}
	Active(descs)
	if descs[0] != konsole() {
		t.Errorf("input was modified: %+v", descs[0])
	}
}

func TestSummaryJSON(t *testing.T) {
	summary, _ := Active([]Descriptor{konsole()})

	data, err := json.Marshal(summary)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"extents":[10,20,800,600],"pid":1234,"name":"konsole"}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}

	var decoded Summary
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded != summary {
		t.Errorf("round trip = %+v, want %+v", decoded, summary)
	}
}

func TestLookup(t *testing.T) {
	src := StaticSource{Windows: []Descriptor{konsole()}}
	summary, ok, err := Lookup(context.Background(), src)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !ok || summary.Name != "konsole" {
		t.Errorf("Lookup() = %+v, %v", summary, ok)
	}

	_, ok, err = Lookup(context.Background(), StaticSource{})
	if err != nil || ok {
		t.Errorf("Lookup() on empty source = ok %v, err %v", ok, err)
	}
}

func TestLookupError(t *testing.T) {
	boom := errors.New("bus unavailable")
	_, ok, err := Lookup(context.Background(), StaticSource{Err: boom})
	if ok {
		t.Error("expected ok=false on error")
	}
	if !errors.Is(err, boom) {
		t.Errorf("Lookup() error = %v, want wrapped %v", err, boom)
	}
	if errors.Is(err, ErrNoActiveWindow) {
		t.Error("source failure must not look like a missing window")
	}
}

func TestChanged(t *testing.T) {
	a := Summarize(konsole())
	b := a
	b.Extents[2] = 1024

	tests := []struct {
		name    string
		prev    Summary
		prevOK  bool
		cur     Summary
		curOK   bool
		changed bool
	}{
		{"same window", a, true, a, true, false},
		{"resized", a, true, b, true, true},
		{"lost focus", a, true, Summary{}, false, true},
		{"gained focus", Summary{}, false, a, true, true},
		{"still nothing", Summary{}, false, Summary{}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Changed(tt.prev, tt.prevOK, tt.cur, tt.curOK); got != tt.changed {
				t.Errorf("Changed() = %v, want %v", got, tt.changed)
			}
		})
	}
}
