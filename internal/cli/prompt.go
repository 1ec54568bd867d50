package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// cliPrompter answers the gate and confirmations from flags/env first, then from stdin.
// Passphrases typed on a terminal are not echoed.
type cliPrompter struct {
	app *App
	in  io.Reader
	out io.Writer

	r *bufio.Reader
}

func newCLIPrompter(cmd *cobra.Command, app *App) *cliPrompter {
	return &cliPrompter{app: app, in: cmd.InOrStdin(), out: cmd.ErrOrStderr()}
}

func (p *cliPrompter) Challenge(prompt string) string {
	if p.app.Passphrase != "" {
		return p.app.Passphrase
	}
	fmt.Fprintf(p.out, "%s: ", prompt)
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return ""
		}
		return string(b)
	}
	line, _ := p.readLine()
	return line
}

func (p *cliPrompter) Confirm(prompt string) bool {
	if p.app.Yes {
		return true
	}
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)
	line, _ := p.readLine()
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// readLine returns one line without its terminator. EOF with no input reads as "" (cancel).
func (p *cliPrompter) readLine() (string, error) {
	if p.r == nil {
		p.r = bufio.NewReader(p.in)
	}
	line, err := p.r.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err != nil && line == "" {
		return "", err
	}
	return line, nil
}
