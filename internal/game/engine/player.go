package engine

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Player is a seated identity. Names are compared case-insensitively, so
// Player is safe to use as a map key.
type Player struct {
	name string
}

func NewPlayer(name string) Player {
	return Player{name: strings.ToLower(strings.TrimSpace(name))}
}

func (p Player) Name() string { return p.name }

func (p Player) IsZero() bool { return p.name == "" }

func (p Player) Equal(o Player) bool { return p.name == o.name }

// Display returns the name with its first letter capitalized.
func (p Player) Display() string {
	r, size := utf8.DecodeRuneInString(p.name)
	if r == utf8.RuneError {
		return p.name
	}
	return string(unicode.ToUpper(r)) + p.name[size:]
}

func (p Player) String() string { return p.Display() }
