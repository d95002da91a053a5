package expr

import (
	"fmt"
	"strings"

	"github.com/jordanekay/PersistDB/schema"
)

// KeyPath references a property reachable from a root model through zero
// or more relationship hops.
//
// Invariant: every segment except the last is a relationship, and each
// segment is declared on the model the previous segment leads to. The
// last segment is a scalar, or a to-one relationship standing for the
// related row's id (relationship-valued equality).
type KeyPath struct {
	Props []*schema.Property
}

func (KeyPath) exprNode() {}

// Path creates a key path from property tokens.
//
// Violations of the key-path invariant cannot arise from tokens of a
// well-formed registry used in declaration order, so Path panics on a bad
// sequence instead of returning an error.
func Path(props ...*schema.Property) KeyPath {
	if len(props) == 0 {
		panic("expr: empty key path")
	}
	for i, p := range props {
		if i > 0 {
			prev := props[i-1]
			if p.Model != prev.Related {
				panic(fmt.Sprintf("expr: key path %s: %s.%s does not follow %s.%s",
					pathNames(props), p.Model.Name, p.Name, prev.Model.Name, prev.Name))
			}
		}
		if i < len(props)-1 && !p.IsRelationship() {
			panic(fmt.Sprintf("expr: key path %s: interior segment %s.%s is not a relationship",
				pathNames(props), p.Model.Name, p.Name))
		}
	}
	if last := props[len(props)-1]; last.Kind == schema.KindToMany {
		panic(fmt.Sprintf("expr: key path %s: cannot terminate at to-many %s.%s",
			pathNames(props), last.Model.Name, last.Name))
	}
	return KeyPath{Props: props}
}

// Root returns the model the path starts at.
func (k KeyPath) Root() *schema.Model { return k.Props[0].Model }

// Leaf returns the terminal property.
func (k KeyPath) Leaf() *schema.Property { return k.Props[len(k.Props)-1] }

// Name returns the dotted path name, used as the result column alias.
func (k KeyPath) Name() string { return pathNames(k.Props) }

func pathNames(props []*schema.Property) string {
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.Name
	}
	return strings.Join(names, ".")
}
