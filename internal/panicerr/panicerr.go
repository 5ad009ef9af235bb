// Package panicerr turns panics and goroutine exits into error returns.
package panicerr

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Recover runs f in a new goroutine, returning its error, or an error
// describing how it failed to return: a panic, or a call to runtime.Goexit.
// The name labels the returned error.
func Recover(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		defer func() {
			// the happy path has already sent, so only an abnormal exit lands here
			select {
			case errch <- exitError(name):
			default:
			}
		}()
		defer func() {
			if e := recover(); e != nil {
				errch <- &panicError{name: name, value: e, stack: debug.Stack()}
			}
		}()
		errch <- f()
	}()
	return <-errch
}

type panicError struct {
	name  string
	value interface{}
	stack []byte
}

func (pe *panicError) Error() string { return fmt.Sprint(pe) }

func (pe *panicError) Format(f fmt.State, c rune) {
	if pe.name == "" {
		fmt.Fprintf(f, "panic: %v", pe.value)
	} else {
		fmt.Fprintf(f, "%v panic: %v", pe.name, pe.value)
	}
	if c == 'v' && f.Flag('+') {
		fmt.Fprintf(f, "\npanic stack: %s", pe.stack)
	}
}

// Unwrap returns the panic value when it is an error.
func (pe *panicError) Unwrap() error {
	err, _ := pe.value.(error)
	return err
}

// Value returns the recovered panic value behind err, if any.
func Value(err error) (interface{}, bool) {
	var pe *panicError
	if errors.As(err, &pe) {
		return pe.value, true
	}
	return nil, false
}

// Stack returns the stack trace captured with a recovered panic.
func Stack(err error) []byte {
	var pe *panicError
	if errors.As(err, &pe) {
		return pe.stack
	}
	return nil
}

// IsPanic reports whether err is a recovered panic.
func IsPanic(err error) bool {
	_, is := Value(err)
	return is
}

type exitError string

func (name exitError) Error() string {
	if name == "" {
		return "runtime.Goexit called"
	}
	return fmt.Sprintf("%v called runtime.Goexit", string(name))
}

// IsExit reports whether err is a recovered runtime.Goexit.
func IsExit(err error) bool {
	var xe exitError
	return errors.As(err, &xe)
}
