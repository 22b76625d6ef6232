package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		verb   string
		params []string
	}{
		{
			name:   "create with assignments",
			text:   "create someemail@example.com title=name desc=description",
			verb:   "create",
			params: []string{"someemail@example.com", "title=name", "desc=description"},
		},
		{
			name:   "verb only",
			text:   "list",
			verb:   "list",
			params: []string{},
		},
		{
			name:   "runs of whitespace",
			text:   "  query \t a@b.com\n  title  ",
			verb:   "query",
			params: []string{"a@b.com", "title"},
		},
		{
			name:   "update multi word value",
			text:   "update a@b.com title=Eng desc=some description",
			verb:   "update",
			params: []string{"a@b.com", "title=Eng", "desc=some", "description"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.verb, cmd.Verb)
			assert.Equal(t, tt.params, cmd.Params)
		})
	}
}

func TestParseEmptyCommand(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := Parse(text)
		require.ErrorIs(t, err, ErrEmptyCommand)
	}
}
