package schema

import (
	"fmt"

	"cuelang.org/go/cue/token"
)

// Error reports an invalid table definition.
type Error struct {
	Table   string
	Field   string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *Error) Error() string {
	msg := e.Message
	switch {
	case e.Table != "" && e.Field != "":
		msg = fmt.Sprintf("table %s field %s: %s", e.Table, e.Field, e.Message)
	case e.Table != "":
		msg = fmt.Sprintf("table %s: %s", e.Table, e.Message)
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), msg)
	}
	return msg
}
