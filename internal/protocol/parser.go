// Package protocol implements the chat command grammar: `verb token*`,
// tokens separated by runs of whitespace, no quoting or escaping.
package protocol

import (
	"errors"
	"strings"
)

var ErrEmptyCommand = errors.New("empty command")

// Command is one parsed chat message.
type Command struct {
	Verb   string
	Params []string
}

// Parse splits text into a verb and the remaining parameter tokens.
func Parse(text string) (Command, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return Command{}, ErrEmptyCommand
	}

	params := make([]string, 0, len(tokens)-1)
	params = append(params, tokens[1:]...)

	return Command{Verb: tokens[0], Params: params}, nil
}
