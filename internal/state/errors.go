package state

import (
	"errors"
	"fmt"

	"github.com/san-kum/rhizosoil/internal/tree"
)

var (
	// ErrNoDefault indicates a declaration whose default is not a number.
	ErrNoDefault = errors.New("state: declaration has no resolvable default")

	// ErrDuplicate indicates two declarations with the same name.
	ErrDuplicate = errors.New("state: duplicate declaration")

	// ErrUnknownVariable indicates a lookup of an undeclared variable.
	ErrUnknownVariable = errors.New("state: unknown variable")

	// ErrInvariant indicates a variable whose entity set differs from the store's.
	ErrInvariant = errors.New("state: entity set invariant violated")

	// ErrOrphan indicates a new entity whose parent is unknown to the store.
	ErrOrphan = errors.New("state: parent of new entity is not populated")

	// ErrNotInitialized indicates use of the store before Initialize.
	ErrNotInitialized = errors.New("state: store not initialized")
)

// InvariantError names the variable whose keys drifted from the entity set.
type InvariantError struct {
	Variable string
	Missing  []tree.ID
	Extra    []tree.ID
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%v: %s missing=%v extra=%v", ErrInvariant, e.Variable, e.Missing, e.Extra)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }
