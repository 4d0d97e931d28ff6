package store

import (
	"errors"
	"fmt"
)

// Abort is the native abort signal of the store.
//
// It is panicked by operations that cannot continue and returned by
// Transaction when the body was aborted. Reason describes why: NoExists,
// BadArg, CommitFailed or any value passed to Activity.Abort.
type Abort struct {
	Reason any
}

func (a *Abort) Error() string {
	return fmt.Sprintf("aborted: %v", a.Reason)
}

// Unwrap exposes an error reason to errors.Is and errors.As.
func (a *Abort) Unwrap() error {
	if err, ok := a.Reason.(error); ok {
		return err
	}
	return nil
}

// NoExists is the abort reason for a reference to a table that was never
// created.
type NoExists struct {
	Table string
}

func (n NoExists) String() string {
	return fmt.Sprintf("no_exists %s", n.Table)
}

// BadArg is the abort reason for a malformed argument, such as a match
// specification whose head does not fit the table.
type BadArg struct {
	Op     string
	Table  string
	Detail string
}

func (b BadArg) String() string {
	return fmt.Sprintf("badarg %s %s: %s", b.Op, b.Table, b.Detail)
}

// CommitFailed is the abort reason when a transaction's disc writes could
// not be persisted. Nothing from the transaction was applied.
type CommitFailed struct {
	Err error
}

func (c CommitFailed) String() string {
	return fmt.Sprintf("commit failed: %v", c.Err)
}

// Error lets errors.Is/As see the underlying cause through Abort.Unwrap.
func (c CommitFailed) Error() string {
	return c.String()
}

func (c CommitFailed) Unwrap() error {
	return c.Err
}

// NoExistsTable reports the missing table if err is an Abort with a
// NoExists reason.
func NoExistsTable(err error) (string, bool) {
	var ab *Abort
	if !errors.As(err, &ab) {
		return "", false
	}
	if ne, ok := ab.Reason.(NoExists); ok {
		return ne.Table, true
	}
	return "", false
}

func abort(reason any) {
	panic(&Abort{Reason: reason})
}
