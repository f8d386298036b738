package ragger

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	CommandQuit  = "quit"
	CommandReset = "reset"

	Greeting     = `Hi! This is your CSV ragger. Write a prompt and press Enter or write "quit" to exit. Alternatively, use "reset" to reset the conversation.`
	ResetMessage = "Your conversation has been reset."
	PromptMarker = "> "
)

// Console runs the interactive question loop over a Service.
type Console struct {
	svc Service
	in  io.Reader
	out io.Writer

	greeting lipgloss.Style
	notice   lipgloss.Style
	answer   lipgloss.Style
}

func NewConsole(svc Service, in io.Reader, out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)

	return &Console{
		svc:      svc,
		in:       in,
		out:      out,
		greeting: r.NewStyle().Bold(true),
		notice:   r.NewStyle().Foreground(lipgloss.Color("8")),
		answer:   r.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

// Run reads one line at a time until "quit" or end of input. Lines have no
// length limit. Any error from the service ends the loop.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, c.greeting.Render(Greeting))

	reader := bufio.NewReader(c.in)
	for {
		fmt.Fprint(c.out, PromptMarker)

		line, err := reader.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return err
			}

			if line == "" {
				fmt.Fprintln(c.out)
				return nil
			}
		}

		prompt := strings.TrimSpace(line)

		switch prompt {
		case CommandQuit:
			return nil

		case CommandReset:
			if err := c.svc.Reset(ctx); err != nil {
				return err
			}

			fmt.Fprintln(c.out, c.notice.Render(ResetMessage))
			continue
		}

		answer, err := c.svc.Ask(ctx, prompt)
		if err != nil {
			return err
		}

		fmt.Fprintln(c.out, c.answer.Render(answer))
	}
}
