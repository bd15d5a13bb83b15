// Package terminal provides prompt helpers: reading hidden input and clearing
// prompts once they have been answered.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"atomicgo.dev/cursor"
	"golang.org/x/term"
)

// stdin is shared by every Prompt call so input buffered past one newline is
// still there for the next prompt when stdin is a pipe.
var stdin = bufio.NewReader(os.Stdin)

// ClearPreviousLines clears a prompt and its answer from the terminal.
// textLength is the number of characters printed (prompt plus input); the line the
// cursor moved to after Enter is cleared as well.
func ClearPreviousLines(textLength int) {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	cursor.ClearLine()
	cursor.ClearLinesUp(linesUsed(textLength, width))
	cursor.StartOfLine()
}

// linesUsed returns how many terminal rows textLength characters occupy at width.
func linesUsed(textLength, width int) int {
	if width <= 0 {
		width = 80
	}
	n := int(math.Ceil(float64(textLength) / float64(width)))
	if n < 1 {
		n = 1
	}
	return n
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return IsTerminal(os.Stdin)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Prompt prints label and reads one line. Input is hidden when secret is set and
// stdin is a terminal. The prompt is cleared afterwards so secrets never stay on screen.
func Prompt(label string, secret bool) (string, error) {
	fmt.Print(label)

	var value string
	if secret && IsInteractive() {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		value = string(b)
		ClearPreviousLines(len(label))
	} else {
		v, err := readLine(stdin)
		if err != nil {
			return "", err
		}
		value = v
		if IsInteractive() {
			ClearPreviousLines(len(label) + len(value))
		}
	}
	return strings.TrimSpace(value), nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
