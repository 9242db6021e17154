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

// interactive reports whether the command can prompt the user. Stdin that is
// a file but not a terminal (a pipe or redirect) cannot; injected readers can.
func interactive(cmd *cobra.Command) bool {
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return true
}

// ask prints question and reads a yes/no answer. An empty answer returns def.
func ask(in io.Reader, out io.Writer, question string, def bool) bool {
	fmt.Fprint(out, question)
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		fmt.Fprintln(out)
		return false
	}
	switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
	case "":
		return def
	case "y", "yes":
		return true
	default:
		return false
	}
}

// stepMark prints the outcome of one plan step.
func stepMark(w io.Writer, name string, err error) {
	if err != nil {
		fmt.Fprintf(w, "  ✗ %s (%v)\n", name, err)
		return
	}
	fmt.Fprintf(w, "  ✓ %s\n", name)
}
