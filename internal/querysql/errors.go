package querysql

import "fmt"

// UnsupportedError reports an argument the compiler cannot translate.
// This is where invalid clause shapes are rejected: the builders pass
// everything through unvalidated.
type UnsupportedError struct {
	Arg    string // argument path, e.g. "meta_query.color"
	Reason string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported %s: %s", e.Arg, e.Reason)
}

func unsupported(arg, format string, args ...any) error {
	return &UnsupportedError{Arg: arg, Reason: fmt.Sprintf(format, args...)}
}
