package taskweaver

import (
	"errors"
	"sync"
)

// Task is implemented by every parsed task kind, including the fallback
// UnknownTask produced for definitions that could not be classified.
type Task interface {
	// Validate appends one message per problem to sink.
	// A valid task appends nothing.
	Validate(sink ErrorSink)
	String() string
}

// ===== Sink =====

// ErrorSink collects human-readable validation messages.
// Implementations only ever append; they never clear or reorder.
type ErrorSink interface {
	AddError(msg string)
}

type ErrorSinkFunc func(msg string)

func (f ErrorSinkFunc) AddError(msg string) { f(msg) }

// ErrorList is an ordered, append-only ErrorSink owned by the caller.
// It is not safe for concurrent use; see SyncErrorList.
type ErrorList []string

// AddError implements ErrorSink.
func (l *ErrorList) AddError(msg string) { *l = append(*l, msg) }

// Len returns the number of collected messages.
func (l ErrorList) Len() int { return len(l) }

// Err joins the collected messages into a single error, or returns nil
// when nothing was collected.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	errs := make([]error, len(l))
	for i, msg := range l {
		errs[i] = errors.New(msg)
	}
	return errors.Join(errs...)
}

// SyncErrorList is an ErrorList guarded by a mutex, for callers that
// validate tasks from several goroutines against one sink.
type SyncErrorList struct {
	mu   sync.Mutex
	list ErrorList
}

// AddError implements ErrorSink.
func (s *SyncErrorList) AddError(msg string) {
	s.mu.Lock()
	s.list.AddError(msg)
	s.mu.Unlock()
}

// Messages returns a copy of the collected messages.
func (s *SyncErrorList) Messages() ErrorList {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(ErrorList, len(s.list))
	copy(out, s.list)
	return out
}

// ValidateAll validates tasks in order against the shared sink.
func ValidateAll(tasks []Task, sink ErrorSink) {
	for _, t := range tasks {
		t.Validate(sink)
	}
}

// Check validates tasks into a fresh ErrorList and returns it.
func Check(tasks []Task) ErrorList {
	var errs ErrorList
	ValidateAll(tasks, &errs)
	return errs
}
