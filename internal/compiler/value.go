package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/vanilla/internal/ir"
)

// toValue converts a concrete CUE value to an argument value. Struct
// fields keep their declaration order, which matters for orderby maps
// and raw clauses.
func toValue(field string, v cue.Value) (ir.Value, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if !v.IsConcrete() {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("must be concrete, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	switch v.Kind() {
	case cue.NullKind:
		return ir.Null{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Bool(b), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Int(n), nil
	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Float(f), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.String(s), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		list := ir.List{}
		for i := 0; iter.Next(); i++ {
			elem, err := toValue(fmt.Sprintf("%s[%d]", field, i), iter.Value())
			if err != nil {
				return nil, err
			}
			list = append(list, elem)
		}
		return list, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		obj := ir.NewObject()
		for iter.Next() {
			label := iter.Selector().Unquoted()
			elem, err := toValue(field+"."+label, iter.Value())
			if err != nil {
				return nil, err
			}
			obj.Set(label, elem)
		}
		return obj, nil
	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unsupported kind: %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}

// lookup returns the value at path when it exists.
func lookup(v cue.Value, path string) (cue.Value, bool) {
	f := v.LookupPath(cue.MakePath(cue.Str(path)))
	return f, f.Exists()
}

// optionalValue converts the field at path, or returns nil when absent.
func optionalValue(v cue.Value, path string) (ir.Value, error) {
	f, ok := lookup(v, path)
	if !ok {
		return nil, nil
	}
	return toValue(path, f)
}

func optionalString(v cue.Value, path string) (string, error) {
	f, ok := lookup(v, path)
	if !ok {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", &CompileError{Field: path, Message: "must be a string", Pos: f.Pos()}
	}
	return s, nil
}

func optionalInt(v cue.Value, path string) (*int64, error) {
	f, ok := lookup(v, path)
	if !ok {
		return nil, nil
	}
	n, err := f.Int64()
	if err != nil {
		return nil, &CompileError{Field: path, Message: "must be an integer", Pos: f.Pos()}
	}
	return &n, nil
}

func optionalBool(v cue.Value, path string) (bool, error) {
	f, ok := lookup(v, path)
	if !ok {
		return false, nil
	}
	b, err := f.Bool()
	if err != nil {
		return false, &CompileError{Field: path, Message: "must be a bool", Pos: f.Pos()}
	}
	return b, nil
}

// optionalStrings accepts a string or a list of strings.
func optionalStrings(v cue.Value, path string) ([]string, error) {
	f, ok := lookup(v, path)
	if !ok {
		return nil, nil
	}
	if s, err := f.String(); err == nil {
		return []string{s}, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, &CompileError{Field: path, Message: "must be a string or a list of strings", Pos: f.Pos()}
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{Field: path, Message: "must be a string or a list of strings", Pos: iter.Value().Pos()}
		}
		out = append(out, s)
	}
	return out, nil
}

// label returns the last selector of v's path, unquoted.
func label(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	sel := sels[len(sels)-1]
	if sel.LabelType() == cue.StringLabel {
		return sel.Unquoted()
	}
	return sel.String()
}
