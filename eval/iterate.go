package eval

import "fmt"

// Iterate expands v into the sequence of values a "#:for" loop walks:
// List/Tuple items in order, a string's runes, or a Dict's keys (matching
// Python's "for k in dict" default iteration over keys).
func Iterate(v Value) ([]Value, error) {
	switch x := v.(type) {
	case *List:
		return x.Items, nil
	case *Tuple:
		return x.Items, nil
	case *Dict:
		return x.Keys(), nil
	case string:
		rs := []rune(x)
		items := make([]Value, len(rs))
		for i, r := range rs {
			items[i] = string(r)
		}
		return items, nil
	}
	return nil, fmt.Errorf("'%T' object is not iterable", v)
}
