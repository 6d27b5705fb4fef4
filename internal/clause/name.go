package clause

import "github.com/roach88/vanilla/internal/ir"

// SuffixLength is the width of the random token appended to repeated keys.
const SuffixLength = 5

// Name re-keys the positional leaves of a flattened meta group by their
// meta key so consumers can address clauses by name (orderby, for one).
//
// A key already present gets "." plus a random token appended, so two
// comparisons on "color" become "color" and "color.x7k2p". Positional
// sub-groups without a key are named recursively and stay positional.
// String keys such as "relation" are copied unchanged.
func Name(group *ir.Object, tokens TokenSource) *ir.Object {
	if tokens == nil {
		tokens = UUIDTokens{}
	}

	out := ir.NewObject()
	for _, e := range group.Entries() {
		part, isObject := e.Value.(*ir.Object)
		if !ir.IsIndex(e.Key) || !isObject {
			out.Set(e.Key, e.Value)
			continue
		}

		key, ok := metaKey(part)
		if !ok {
			out.Push(Name(part, tokens))
			continue
		}
		base := key
		for out.Has(key) {
			key = base + "." + tokens.Token(SuffixLength)
		}
		out.Set(key, part)
	}
	return out
}

// Unname reverses Name: leaves keyed by name become positional again,
// in order. The result no longer depends on the random suffixes, so two
// namings of one group unname to equal objects.
func Unname(group *ir.Object) *ir.Object {
	out := ir.NewObject()
	for _, e := range group.Entries() {
		part, isObject := e.Value.(*ir.Object)
		switch {
		case !isObject:
			out.Set(e.Key, e.Value)
		case ir.IsIndex(e.Key):
			if _, ok := metaKey(part); ok {
				out.Push(part)
			} else {
				out.Push(Unname(part))
			}
		default:
			if _, ok := metaKey(part); ok {
				out.Push(part)
			} else {
				out.Set(e.Key, part)
			}
		}
	}
	return out
}

// metaKey returns the leaf's key when set and not null.
func metaKey(part *ir.Object) (string, bool) {
	v, ok := part.Get("key")
	if !ok {
		return "", false
	}
	if _, isNull := v.(ir.Null); isNull {
		return "", false
	}
	return ir.Scalar(v), true
}
