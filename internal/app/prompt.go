package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/authstarter/internal/forms"
)

// errInputClosed means stdin ended, which quits the app
var errInputClosed = errors.New("input closed")

// console reads lines from the user and writes screens to them
type console struct {
	in  *bufio.Scanner
	out io.Writer

	// terminal fd for reading passwords without echo, or -1
	ttyFD int

	title  *color.Color
	danger *color.Color
	muted  *color.Color
}

func newConsole(in io.Reader, out io.Writer) *console {
	ttyFD := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		ttyFD = int(f.Fd())
	}

	return &console{
		in:     bufio.NewScanner(in),
		out:    out,
		ttyFD:  ttyFD,
		title:  color.New(color.FgCyan, color.Bold),
		danger: color.New(color.FgRed, color.Bold),
		muted:  color.New(color.Faint),
	}
}

func (c *console) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *console) printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

func (c *console) heading(text string) {
	c.println()
	c.title.Fprintln(c.out, text)
}

// ask prints a prompt and returns the trimmed reply
func (c *console) ask(prompt string) (string, error) {
	c.printf("%s: ", prompt)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// askPassword is ask without echo when reading from a terminal
func (c *console) askPassword(prompt string) (string, error) {
	if c.ttyFD < 0 {
		return c.ask(prompt)
	}

	c.printf("%s: ", prompt)
	password, err := term.ReadPassword(c.ttyFD)
	c.println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// choose shows numbered options and returns the picked index
func (c *console) choose(options ...string) (int, error) {
	for i, opt := range options {
		c.printf("  %d) %s\n", i+1, opt)
	}
	for {
		reply, err := c.ask("Choose")
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(reply)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		c.muted.Fprintf(c.out, "Enter a number from 1 to %d\n", len(options))
	}
}

// Alert implements forms.Alerter. Alerts with buttons block until one is picked.
func (c *console) Alert(title, message string, buttons ...forms.AlertButton) {
	c.println()
	if title == forms.TitleError || strings.HasSuffix(title, "Failed") {
		c.danger.Fprintln(c.out, title)
	} else {
		c.title.Fprintln(c.out, title)
	}
	c.println(message)

	if len(buttons) == 0 {
		return
	}

	labels := make([]string, len(buttons))
	for i, b := range buttons {
		labels[i] = b.Text
		if b.Style == forms.StyleDestructive {
			labels[i] = c.danger.Sprint(b.Text)
		}
	}

	picked, err := c.choose(labels...)
	if err != nil {
		// Closing the input is the same as dismissing with the cancel button
		picked = cancelButton(buttons)
		if picked < 0 {
			return
		}
	}
	if fn := buttons[picked].OnPress; fn != nil {
		fn()
	}
}

func cancelButton(buttons []forms.AlertButton) int {
	for i, b := range buttons {
		if b.Style == forms.StyleCancel {
			return i
		}
	}
	return -1
}
