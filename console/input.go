package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MaxAttempts bounds how often a prompt is repeated on invalid input.
const MaxAttempts = 5

var ErrTooManyAttempts = errors.New("too many invalid answers")

type PrintFunction func(out io.Writer, attempts int) error

// Console reads answers line by line from in and writes prompts to out.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return strings.TrimSpace(line), err
}

func (c *Console) expect(print PrintFunction, accept func(string) bool) (string, error) {
	for attempts := 0; attempts < MaxAttempts; attempts++ {
		if err := print(c.out, attempts); err != nil {
			return "", err
		}
		value, err := c.readLine()
		if err != nil {
			return "", err
		}
		if accept(value) {
			return value, nil
		}
	}
	return "", ErrTooManyAttempts
}

func (c *Console) ExpectIntRange(min int, max int, print PrintFunction) (int, error) {
	var value int
	_, err := c.expect(print, func(s string) bool {
		v, err := strconv.Atoi(s)
		if err != nil || v < min || v > max {
			return false
		}
		value = v
		return true
	})
	return value, err
}

func (c *Console) ExpectAnyString(print PrintFunction) (string, error) {
	return c.expect(print, func(s string) bool {
		return s != ""
	})
}

func (c *Console) ExpectRestrictedString(values []string, print PrintFunction) (string, error) {
	return c.expect(print, func(s string) bool {
		for _, v := range values {
			if v == s {
				return true
			}
		}
		return false
	})
}

func Prompt(prompt string) PrintFunction {
	return func(out io.Writer, attempts int) error {
		if attempts > 0 {
			if _, err := fmt.Fprint(out, "invalid answer, try again\n"); err != nil {
				return err
			}
		}
		_, err := fmt.Fprint(out, prompt)
		return err
	}
}
