package taskweaver

import (
	"fmt"
	"maps"
	"slices"
)

// UnknownTask stands in for a definition the parser could not match to any
// registered kind. It always fails validation.
//
// All fields are copied on construction and never mutated afterwards.
type UnknownTask struct {
	params     []string
	doubleTask bool
	attrs      map[string]string
}

var _ Task = (*UnknownTask)(nil)

// NewUnknownTask builds the fallback record. No checks are performed here;
// the record reports itself through Validate.
func NewUnknownTask(params []string, doubleTask bool, unknownAttributes map[string]string) *UnknownTask {
	return &UnknownTask{
		params:     slices.Clone(params),
		doubleTask: doubleTask,
		attrs:      maps.Clone(unknownAttributes),
	}
}

// Params returns a copy of the raw definition tokens.
func (t *UnknownTask) Params() []string { return slices.Clone(t.params) }

// DoubleTask returns the flag recorded by the parser. Its meaning belongs to
// the parser; UnknownTask never inspects it.
func (t *UnknownTask) DoubleTask() bool { return t.doubleTask }

// UnknownAttributes returns a copy of the attributes the parser could not place.
func (t *UnknownTask) UnknownAttributes() map[string]string { return maps.Clone(t.attrs) }

// Err returns the error value this record represents.
func (t *UnknownTask) Err() *UnknownCommandError {
	return &UnknownCommandError{Params: t.Params()}
}

// Validate implements Task. It appends exactly one message on every call.
func (t *UnknownTask) Validate(sink ErrorSink) {
	sink.AddError(t.String())
}

// String implements Task and matches the message appended by Validate.
func (t *UnknownTask) String() string {
	return unknownCommandMessage(t.params)
}

func unknownCommandMessage(params []string) string {
	return fmt.Sprintf("Unknown command in def %v.", params)
}
