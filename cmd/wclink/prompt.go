// cmd/wclink/prompt.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/tamzrod/wclink/internal/transfer"
)

// stdinPrompter asks the operator on the terminal. One goroutine owns the
// reader; a question abandoned on cancel leaves its answer for the next ask.
type stdinPrompter struct {
	in  *bufio.Reader
	out io.Writer

	once  sync.Once
	lines chan reply
}

type reply struct {
	line string
	err  error
}

func newPrompter(in io.Reader, out io.Writer) *stdinPrompter {
	return &stdinPrompter{in: bufio.NewReader(in), out: out, lines: make(chan reply)}
}

func (p *stdinPrompter) readLines() {
	defer close(p.lines)
	for {
		line, err := p.in.ReadString('\n')
		p.lines <- reply{strings.ToLower(strings.TrimSpace(line)), err}
		if err != nil {
			return
		}
	}
}

// ask prints question and waits for a line or ctx.
func (p *stdinPrompter) ask(ctx context.Context, question string) (string, error) {
	p.once.Do(func() { go p.readLines() })
	fmt.Fprint(p.out, question)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		if r.err != nil && r.line == "" {
			return "", r.err
		}
		return r.line, nil
	}
}

func (p *stdinPrompter) ConfirmReinit(ctx context.Context) (transfer.ReinitChoice, error) {
	fmt.Fprintln(p.out, "You can reinitialize existing registers and coils.")
	ans, err := p.ask(ctx, "Reinitialize registers and coils? [y]es/[n]o/[c]ancel: ")
	if err != nil {
		return transfer.ReinitCancel, err
	}
	switch ans {
	case "y", "yes":
		return transfer.ReinitYes, nil
	case "n", "no":
		return transfer.ReinitNo, nil
	default:
		return transfer.ReinitCancel, nil
	}
}

func (p *stdinPrompter) ContinueAfterFailure(ctx context.Context, f transfer.Failure) (bool, error) {
	fmt.Fprintf(p.out, "\nModbus transmission failed: %v\n", f)
	ans, err := p.ask(ctx, "Continue with next item? [y/N]: ")
	if err != nil {
		return false, err
	}
	return ans == "y" || ans == "yes", nil
}

func (p *stdinPrompter) ConfirmCommit(ctx context.Context) (bool, error) {
	ans, err := p.ask(ctx, "Overwrite factory defaults with the current values? [y/N]: ")
	if err != nil {
		return false, err
	}
	return ans == "y" || ans == "yes", nil
}

// progressPrinter redraws one status line per register group.
func progressPrinter(out io.Writer) transfer.ProgressFunc {
	return func(done, total int, label string) {
		fmt.Fprintf(out, "\r[%d/%d] %-40s", done, total, label)
		if done == total {
			fmt.Fprintln(out)
		}
	}
}
