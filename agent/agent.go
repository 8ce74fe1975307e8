package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Agent runs the chat session between the user and an Expert.
type Agent struct {
	w      io.Writer
	r      *bufio.Reader
	Expert *Expert
	// Print writes an answer, Fprintln to w when nil.
	Print func(answer string)
}

// New returns an Agent writing answers to w and reading questions from r.
func New(w io.Writer, r io.Reader, expert *Expert) *Agent {
	return &Agent{
		w:      w,
		r:      bufio.NewReader(r),
		Expert: expert,
	}
}

const prompt = "assist> "

// Run starts the interactive session. Questions in prompts are asked first,
// then lines are read until "bye" or the end of input.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if !a.Expert.Started() {
		if err := a.Expert.Start(ctx, client); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.w, "Welcome to cfo assist. Type 'bye' to exit.")

	for {
		fmt.Fprint(a.w, prompt)
		var input string

		// Flush prompts from the list and then ask for the user.
		if len(prompts) > 0 {
			input, prompts = strings.TrimSpace(prompts[0]), prompts[1:]
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			var err error
			input, err = a.r.ReadString('\n')
			if errors.Is(err, io.EOF) && strings.TrimSpace(input) == "" {
				fmt.Fprintln(a.w)
				return nil
			}
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
		}

		if input == "bye" {
			return nil
		}

		content, err := a.Expert.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		a.print(text(content))
	}
}

func (a *Agent) print(answer string) {
	if a.Print != nil {
		a.Print(answer)
		return
	}
	fmt.Fprintln(a.w, answer)
}

// text concatenates the text parts of c.
func text(c *genai.Content) string {
	var b strings.Builder
	for _, p := range c.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
