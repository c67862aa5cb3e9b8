package dispatch

import (
	"fmt"
	"strings"
)

// Pattern identifies an operation by role and command, e.g. role:account,cmd:create.
type Pattern struct {
	Role string
	Cmd  string
}

func NewPattern(role string, cmd string) Pattern {
	return Pattern{Role: role, Cmd: cmd}.normalize()
}

// ParsePattern accepts the textual form "role:<role>,cmd:<cmd>". Keys may
// appear in any order and surrounding whitespace is ignored.
func ParsePattern(value string) (Pattern, error) {
	var pattern Pattern
	for _, part := range strings.Split(value, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return Pattern{}, badInput(fmt.Sprintf("dispatch: malformed pattern segment %q", part), map[string]any{
				"pattern": value,
			})
		}
		switch strings.TrimSpace(strings.ToLower(key)) {
		case "role":
			pattern.Role = val
		case "cmd":
			pattern.Cmd = val
		default:
			return Pattern{}, badInput(fmt.Sprintf("dispatch: unknown pattern key %q", key), map[string]any{
				"pattern": value,
			})
		}
	}
	pattern = pattern.normalize()
	if err := pattern.Validate(); err != nil {
		return Pattern{}, err
	}
	return pattern, nil
}

func MustParsePattern(value string) Pattern {
	pattern, err := ParsePattern(value)
	if err != nil {
		panic(err)
	}
	return pattern
}

func (p Pattern) Validate() error {
	if strings.TrimSpace(p.Role) == "" {
		return badInput("dispatch: pattern role is required", map[string]any{"cmd": p.Cmd})
	}
	if strings.TrimSpace(p.Cmd) == "" {
		return badInput("dispatch: pattern cmd is required", map[string]any{"role": p.Role})
	}
	return nil
}

func (p Pattern) String() string {
	return "role:" + p.Role + ",cmd:" + p.Cmd
}

func (p Pattern) normalize() Pattern {
	return Pattern{
		Role: strings.TrimSpace(strings.ToLower(p.Role)),
		Cmd:  strings.TrimSpace(strings.ToLower(p.Cmd)),
	}
}
