package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// Prompter reads answers from one input stream. A single bufio.Reader is
// kept so buffered input is not lost between prompts.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a prompter over in and out
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Stdio returns a prompter on the terminal
func Stdio() *Prompter {
	return New(os.Stdin, os.Stdout)
}

// ReadLine prints label and returns the trimmed line. io.EOF is returned
// once input is exhausted.
func (p *Prompter) ReadLine(label string) (string, error) {
	fmt.Fprint(p.out, label)
	input, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// Confirm asks a yes/no question
func (p *Prompter) Confirm(label string) (bool, error) {
	input, err := p.ReadLine(label + " (y/n) ")
	if err != nil {
		return false, err
	}
	response := strings.ToLower(input)
	return response == "y" || response == "yes", nil
}

// PromptString prompts user for a string input
func PromptString(label string) (string, error) {
	return Stdio().ReadLine(label)
}

// PromptPassword prompts user for a password (hidden input)
func PromptPassword(label string) (string, error) {
	fmt.Print(label)

	// Read password without echoing
	bytepw, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}

	fmt.Println() // New line after password input

	return string(bytepw), nil
}

// PromptConfirm prompts user for yes/no confirmation
func PromptConfirm(label string) (bool, error) {
	return Stdio().Confirm(label)
}
