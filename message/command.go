package message

import (
	"strings"
	"unicode"
)

// Command is a plaintext message whose content has been parsed into a command
// name and arguments, for example "/nick Alice" into name "nick" and
// arguments ["Alice"].
type Command struct {
	Plain

	name string
	args []string
}

// Name returns the command token without the leading '/'.
func (c *Command) Name() string { return c.name }

// Args returns the whitespace-separated arguments following the command token.
func (c *Command) Args() []string { return c.args }

// ToCommand returns the command itself.
func (c *Command) ToCommand() (*Command, error) {
	return c, nil
}

// ToCommand parses the message content into a command. It fails with a
// FormatError when the message is not flagged as a command or when the
// content carries no command token after the leading '/'.
func (m *Plain) ToCommand() (*Command, error) {
	if !m.command {
		return nil, formatErrorf("message is not a command")
	}

	name, args, err := parseCommand(m.content)
	if err != nil {
		return nil, err
	}

	return &Command{
		Plain: *m,
		name:  name,
		args:  args,
	}, nil
}

func parseCommand(content string) (name string, args []string, err error) {
	rest := strings.TrimPrefix(content, "/")
	if rest == "" {
		return "", nil, formatErrorf("command content is a bare '/'")
	}

	split := strings.IndexFunc(rest, unicode.IsSpace)
	if split == 0 {
		return "", nil, formatErrorf("command token is empty")
	}
	if split < 0 {
		return rest, nil, nil
	}

	return rest[:split], strings.Fields(rest[split:]), nil
}
