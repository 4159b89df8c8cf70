package review

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Decision is a single reviewer verdict on a candidate.
type Decision byte

const (
	DecisionVerify Decision = 'v'
	DecisionReject Decision = 'r'
	DecisionSkip   Decision = 's'
	DecisionOpen   Decision = 'o'
	DecisionQuit   Decision = 'q'
)

// ParseDecision maps reviewer input to a decision. Input is trimmed and
// case-insensitive; only the single-letter commands are accepted.
func ParseDecision(input string) (Decision, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	switch trimmed {
	case "v":
		return DecisionVerify, nil
	case "r":
		return DecisionReject, nil
	case "s":
		return DecisionSkip, nil
	case "o":
		return DecisionOpen, nil
	case "q":
		return DecisionQuit, nil
	default:
		return 0, fmt.Errorf("unknown decision %q (expected v, r, s, o, or q)", trimmed)
	}
}

// DecisionSource supplies reviewer decisions one candidate at a time.
type DecisionSource interface {
	// Next blocks for the next decision. Returning an error aborts the
	// session; io.EOF is treated as quit.
	Next() (Decision, error)
}

// ReaderSource reads line-oriented decisions from an input stream,
// re-prompting on unrecognized input.
type ReaderSource struct {
	scanner *bufio.Scanner
	prompt  io.Writer
}

// NewReaderSource wires a decision source over in, echoing re-prompts to out.
func NewReaderSource(in io.Reader, out io.Writer) *ReaderSource {
	return &ReaderSource{scanner: bufio.NewScanner(in), prompt: out}
}

func (s *ReaderSource) Next() (Decision, error) {
	for {
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		decision, err := ParseDecision(s.scanner.Text())
		if err != nil {
			fmt.Fprintf(s.prompt, "%v\n", err)
			continue
		}
		return decision, nil
	}
}

// ScriptedSource replays a fixed decision sequence, then quits. Used by tests
// and batch invocations.
type ScriptedSource struct {
	decisions []Decision
	next      int
}

// NewScriptedSource builds a source over the given sequence.
func NewScriptedSource(decisions ...Decision) *ScriptedSource {
	return &ScriptedSource{decisions: decisions}
}

func (s *ScriptedSource) Next() (Decision, error) {
	if s.next >= len(s.decisions) {
		return DecisionQuit, nil
	}
	decision := s.decisions[s.next]
	s.next++
	return decision, nil
}
