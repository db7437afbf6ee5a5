package dupgate

import (
	"errors"
	"os"
	"strings"
	"testing"

	"reckon/internal/services"
)

func TestParseResolution(t *testing.T) {
	tests := []struct {
		in   string
		want Resolution
		ok   bool
	}{
		{"skip", ResolutionSkip, true},
		{"", ResolutionSkip, true},
		{"OVERRIDE", ResolutionOverride, true},
		{"ask", "", false},
	}
	for _, tt := range tests {
		got, err := ParseResolution(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseResolution(%q) = %q, %v", tt.in, got, err)
		}
		if !tt.ok && !errors.Is(err, services.ErrConfiguration) {
			t.Errorf("ParseResolution(%q) error = %v, want configuration error", tt.in, err)
		}
	}
}

func TestAutoApprover(t *testing.T) {
	skip, err := AutoApprover{Resolution: ResolutionSkip}.Confirm(t.Context(), ProcessingDecision{})
	if err != nil || skip != ResolutionSkip {
		t.Errorf("skip approver = %q, %v", skip, err)
	}
	override, err := AutoApprover{Resolution: ResolutionOverride}.Confirm(t.Context(), ProcessingDecision{})
	if err != nil || override != ResolutionOverride {
		t.Errorf("override approver = %q, %v", override, err)
	}
	// Zero value defaults to the safe resolution.
	def, err := AutoApprover{}.Confirm(t.Context(), ProcessingDecision{})
	if err != nil || def != ResolutionSkip {
		t.Errorf("zero approver = %q, %v", def, err)
	}
}

func TestInteractiveApproverRefusesNonTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	approver := &InteractiveApprover{In: r, Out: &strings.Builder{}}
	_, err = approver.Confirm(t.Context(), ProcessingDecision{Method: MethodCompact})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("Confirm on pipe = %v, want configuration error", err)
	}
}
