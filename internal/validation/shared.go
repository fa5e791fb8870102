package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Error collects field-level validation failures, keyed by JSON field name.
// Price map entries use "prices.<SYMBOL>".
type Error struct {
	Fields map[string]string
}

// Error renders the failures sorted by field so messages are stable.
func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

// result returns nil when fields is empty, otherwise an *Error.
func result(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &Error{Fields: fields}
}
