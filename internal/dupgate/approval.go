package dupgate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"reckon/internal/services"
)

// Resolution is an approval policy's answer for a confirmed duplicate.
type Resolution string

const (
	ResolutionSkip     Resolution = "skip"
	ResolutionOverride Resolution = "override"
)

// Approver resolves what to do with a matched duplicate. Interactive and
// automated configurations share this one contract, so gate logic stays
// decoupled from presentation.
type Approver interface {
	Confirm(ctx context.Context, match ProcessingDecision) (Resolution, error)
}

// AutoApprover applies a fixed resolution without prompting. Unattended runs
// use it with ResolutionSkip so duplicates never block the pipeline.
type AutoApprover struct {
	Resolution Resolution
}

// Confirm returns the configured resolution.
func (a AutoApprover) Confirm(context.Context, ProcessingDecision) (Resolution, error) {
	if a.Resolution == ResolutionOverride {
		return ResolutionOverride, nil
	}
	return ResolutionSkip, nil
}

// ParseResolution maps a configured resolution tag to the closed set.
func ParseResolution(value string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "skip":
		return ResolutionSkip, nil
	case "override":
		return ResolutionOverride, nil
	default:
		return "", fmt.Errorf("%w: unknown resolution %q", services.ErrConfiguration, value)
	}
}

// InteractiveApprover prompts on the terminal. Confirm may suspend
// indefinitely awaiting input; the caller holds the per-identity lock for the
// recording under decision, which is deliberate backpressure against
// concurrent duplicate processing of the same identity.
type InteractiveApprover struct {
	In  *os.File
	Out io.Writer
}

// NewInteractiveApprover prompts on stdin/stderr.
func NewInteractiveApprover() *InteractiveApprover {
	return &InteractiveApprover{In: os.Stdin, Out: os.Stderr}
}

// Confirm asks whether to skip the duplicate. It refuses to block when stdin
// is not a terminal; unattended callers must configure auto-approval instead.
func (a *InteractiveApprover) Confirm(ctx context.Context, match ProcessingDecision) (Resolution, error) {
	if a.In == nil || (!isatty.IsTerminal(a.In.Fd()) && !isatty.IsCygwinTerminal(a.In.Fd())) {
		return "", services.Wrap(services.ErrConfiguration, "dupgate", "confirm duplicate",
			"stdin is not a terminal; use auto-approve for unattended runs", nil)
	}

	prior := match.Prior
	fmt.Fprintf(a.Out, "Duplicate recording matched by %s:\n", match.Method)
	if prior != nil {
		fmt.Fprintf(a.Out, "  record #%d %q processed %s\n", prior.RecordID, prior.Topic, prior.ProcessedAt.Format(time.RFC3339))
	}
	fmt.Fprint(a.Out, "Skip this recording? [Y/n] ")

	type answer struct {
		text string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(a.In).ReadString('\n')
		ch <- answer{text: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case got := <-ch:
		if got.err != nil && strings.TrimSpace(got.text) == "" {
			return "", fmt.Errorf("read confirmation: %w", got.err)
		}
		switch strings.ToLower(strings.TrimSpace(got.text)) {
		case "", "y", "yes":
			return ResolutionSkip, nil
		case "n", "no":
			return ResolutionOverride, nil
		default:
			return ResolutionSkip, nil
		}
	}
}
