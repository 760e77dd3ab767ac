package dispatch

import (
	"errors"
	"fmt"

	"github.com/san-kum/rhizosoil/internal/tree"
)

var (
	ErrNoArguments     = errors.New("dispatch: binding has no arguments")
	ErrNilKernel       = errors.New("dispatch: binding has no kernel")
	ErrDuplicate       = errors.New("dispatch: binding registered twice")
	ErrUnknownArgument = errors.New("dispatch: argument does not name a variable or parameter")
	ErrAmbiguous       = errors.New("dispatch: argument names both a variable and a parameter")
	ErrUnknownTarget   = errors.New("dispatch: update does not name a stored state variable")
	ErrShadowParameter = errors.New("dispatch: process output would shadow a parameter")
	ErrMissingValue    = errors.New("dispatch: argument has no value for entity")
)

// BindingError names the binding, argument and entity involved in a failure.
type BindingError struct {
	Tag      Tag
	Binding  string
	Argument string
	Entity   tree.ID
	// HasEntity is false for failures not tied to one entity.
	HasEntity bool
	Err       error
}

func (e *BindingError) Error() string {
	switch {
	case e.Argument != "" && e.HasEntity:
		return fmt.Sprintf("%s %s: %v (argument=%s, entity=%d)", e.Tag, e.Binding, e.Err, e.Argument, e.Entity)
	case e.Argument != "":
		return fmt.Sprintf("%s %s: %v (argument=%s)", e.Tag, e.Binding, e.Err, e.Argument)
	case e.HasEntity:
		return fmt.Sprintf("%s %s: %v (entity=%d)", e.Tag, e.Binding, e.Err, e.Entity)
	default:
		return fmt.Sprintf("%s %s: %v", e.Tag, e.Binding, e.Err)
	}
}

func (e *BindingError) Unwrap() error { return e.Err }
