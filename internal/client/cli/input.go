package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/melitton/internal/models"
	"golang.org/x/term"
)

// readPassword and isTerminal are test seams over golang.org/x/term.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// maxAttempts bounds re-prompting after invalid answers.
const maxAttempts = 3

var errTooManyAttempts = errors.New("too many invalid answers")

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints prompt to w and reads a secret from the terminal
// without echo.
func GetPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetMultiline reads lines until an empty one and joins them with '\n'.
func GetMultiline(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
		if err != nil {
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// prompter asks typed questions. An empty answer keeps the default shown
// in brackets.
type prompter struct {
	r *bufio.Reader
	w io.Writer
}

func (p prompter) text(label, def string) (string, error) {
	prompt := label
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]", label, def)
	}
	v, err := GetSimpleText(p.r, prompt, p.w)
	if err != nil {
		return "", err
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}

func (p prompter) required(label, def string) (string, error) {
	for range maxAttempts {
		v, err := p.text(label, def)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(v) != "" {
			return v, nil
		}
		fmt.Fprintln(p.w, "A value is required.")
	}
	return "", errTooManyAttempts
}

// choice offers a numbered list; the answer may be the number or the value.
func choice[T ~string](p prompter, label string, options []T, def T) (T, error) {
	var b strings.Builder
	b.WriteString(label)
	for i, o := range options {
		fmt.Fprintf(&b, "\n  %d) %s", i+1, o)
	}

	for range maxAttempts {
		v, err := p.text(b.String(), string(def))
		if err != nil {
			return "", err
		}
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		if i := slices.IndexFunc(options, func(o T) bool { return strings.EqualFold(string(o), v) }); i >= 0 {
			return options[i], nil
		}
		fmt.Fprintf(p.w, "%q is not one of the options.\n", v)
	}
	return "", errTooManyAttempts
}

func (p prompter) date(label, def string) (string, error) {
	for range maxAttempts {
		v, err := p.text(label+" (YYYY-MM-DD)", def)
		if err != nil {
			return "", err
		}
		if _, err := models.ParseDate(v); err == nil {
			return models.NormalizeDate(v), nil
		}
		fmt.Fprintf(p.w, "%q is not a date.\n", v)
	}
	return "", errTooManyAttempts
}

func (p prompter) positiveInt(label string, def int) (int, error) {
	for range maxAttempts {
		v, err := p.text(label, strconv.Itoa(def))
		if err != nil {
			return 0, err
		}
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			return n, nil
		}
		fmt.Fprintf(p.w, "%q is not a positive whole number.\n", v)
	}
	return 0, errTooManyAttempts
}

// coordinate reads an optional number. "-" clears the current value.
func (p prompter) coordinate(label string, def *float64) (*float64, error) {
	shown := ""
	if def != nil {
		shown = strconv.FormatFloat(*def, 'f', -1, 64)
	}
	for range maxAttempts {
		v, err := p.text(label+" (optional, - to clear)", shown)
		if err != nil {
			return nil, err
		}
		switch v {
		case "", "-":
			return nil, nil
		case shown:
			return def, nil
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
		if err == nil {
			return &f, nil
		}
		fmt.Fprintf(p.w, "%q is not a number.\n", v)
	}
	return nil, errTooManyAttempts
}

// confirm asks the user to type word. Anything else cancels.
func (p prompter) confirm(question, word string) (bool, error) {
	v, err := GetSimpleText(p.r, fmt.Sprintf("%s Type %q to confirm.", question, word), p.w)
	if err != nil {
		return false, err
	}
	return v == word, nil
}
