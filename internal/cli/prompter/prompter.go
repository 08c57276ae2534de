package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	stdin    = bufio.NewReader(os.Stdin)
	replaced bool
)

// SetInput reads later answers from r instead of os.Stdin
func SetInput(r io.Reader) {
	stdin = bufio.NewReader(r)
	replaced = true
}

// ResetInput goes back to reading os.Stdin
func ResetInput() {
	stdin = bufio.NewReader(os.Stdin)
	replaced = false
}

// PromptString prompts user for a string input
func PromptString(label string) (string, error) {
	fmt.Print(label)
	input, err := stdin.ReadString('\n')
	if err != nil && !(err == io.EOF && input != "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// PromptPassword reads a password without echo when stdin is a terminal
func PromptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if replaced || !term.IsTerminal(fd) {
		return PromptString(label)
	}

	fmt.Print(label)
	pw, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// PromptConfirm prompts user for yes/no confirmation
func PromptConfirm(label string) (bool, error) {
	answer, err := PromptString(label + " (y/n) ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
