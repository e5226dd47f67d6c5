package sweep

import (
	"bufio"
	"fmt"
	"io"
)

// Gate blocks until an external ready signal arrives. The live session uses
// the operator's keyboard; automated harnesses substitute their own.
type Gate interface {
	Wait(prompt string) error
}

// ConsoleGate prompts on out and blocks until a line arrives on in. There is
// no timeout: the session waits for the operator indefinitely.
type ConsoleGate struct {
	out io.Writer
	in  *bufio.Reader
}

func NewConsoleGate(in io.Reader, out io.Writer) *ConsoleGate {
	return &ConsoleGate{out: out, in: bufio.NewReader(in)}
}

func (g *ConsoleGate) Wait(prompt string) error {
	fmt.Fprintf(g.out, "\n%s\nPress SPACEBAR then ENTER when ready...\n", prompt)
	if _, err := g.in.ReadString('\n'); err != nil {
		return fmt.Errorf("wait for operator: %w", err)
	}
	return nil
}

// AutoGate never blocks. Used by non-interactive callers.
type AutoGate struct{}

func (AutoGate) Wait(string) error { return nil }
