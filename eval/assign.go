package eval

import (
	"fmt"

	"github.com/aradi/fypp/env"
)

// Assign implements the "#:set" binding rule: a single target binds value
// directly; multiple targets unpack value (a Tuple or List of matching
// length) positionally, Python-tuple-assignment style.
func Assign(targets []string, value Value, e *env.Env) error {
	if env.IsReservedName(targets[0]) && len(targets) == 1 {
		return fmt.Errorf("cannot assign to reserved name '%s'", targets[0])
	}
	if len(targets) == 1 {
		e.Assign(targets[0], value)
		return nil
	}
	items, err := seqItems(value)
	if err != nil {
		return fmt.Errorf("cannot unpack non-sequence value into %d targets", len(targets))
	}
	if len(items) != len(targets) {
		return fmt.Errorf("cannot unpack %d values into %d targets", len(items), len(targets))
	}
	for i, t := range targets {
		if env.IsReservedName(t) {
			return fmt.Errorf("cannot assign to reserved name '%s'", t)
		}
		e.Assign(t, items[i])
	}
	return nil
}

// DeclareGlobal implements "#:global name1 name2 ...".
func DeclareGlobal(names []string, e *env.Env) {
	for _, n := range names {
		e.DeclareGlobal(n)
	}
}

// Delete implements "#:del name1 name2 ...".
func Delete(names []string, e *env.Env) error {
	for _, n := range names {
		if !e.Delete(n) {
			return fmt.Errorf("name '%s' is not defined", n)
		}
	}
	return nil
}
