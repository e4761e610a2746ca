// Package matcher finds user fields whose names match the names the padding
// engine synthesizes. The engine itself never renames anything; a match is
// only surfaced so the caller can warn.
package matcher

import (
	"go/token"
	"strings"

	"github.com/seitarof/gen-pad/internal/parser"
)

// Collision is a user field that may clash with a synthesized padding field.
type Collision struct {
	Decl  string
	Field string
	Pos   token.Position
}

// CollisionMatcher matches declared field names against the padding pattern.
type CollisionMatcher interface {
	Match(d *parser.Decl) []Collision
}

type collisionMatcherImpl struct {
	prefix string
	blank  bool
}

// NewCollisionMatcher returns a matcher for padding names made of prefix
// followed by a decimal counter. With blank padding every synthesized field
// is "_", which Go allows to repeat, so nothing can collide.
func NewCollisionMatcher(prefix string, blank bool) CollisionMatcher {
	return &collisionMatcherImpl{prefix: prefix, blank: blank}
}

func (m *collisionMatcherImpl) Match(d *parser.Decl) []Collision {
	if m.blank || d.Annotated() == 0 {
		return nil
	}

	var out []Collision
	for _, e := range d.Entries {
		if e.Name.Kind != parser.NameIdent {
			continue
		}
		if !m.matches(e.Name.Ident) {
			continue
		}
		out = append(out, Collision{Decl: d.Name, Field: e.Name.Ident, Pos: e.Pos})
	}
	return out
}

func (m *collisionMatcherImpl) matches(name string) bool {
	rest, ok := strings.CutPrefix(name, m.prefix)
	if !ok || rest == "" {
		return false
	}
	return strings.Trim(rest, "0123456789") == ""
}
