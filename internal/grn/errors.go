package grn

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateName indicates a species name that is already registered.
	ErrDuplicateName = errors.New("grn: duplicate species name")

	// ErrUnknownSpecies indicates a gene citing a species that was never registered.
	ErrUnknownSpecies = errors.New("grn: unknown species")

	// ErrInvalidParameter indicates a non-positive Kd or n, a negative rate or decay.
	ErrInvalidParameter = errors.New("grn: invalid parameter")

	// ErrInputProduced indicates a gene listing an input species among its outputs.
	ErrInputProduced = errors.New("grn: input species cannot be produced")
)

// Role tells where in a gene a species reference appears.
type Role string

const (
	RoleRegulator Role = "regulator"
	RoleOutput    Role = "output"
)

// ReferenceError reports a gene reference that failed to resolve at assembly.
type ReferenceError struct {
	Gene    int
	Species string
	Role    Role
	Wrapped error
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("gene %d: %s %q: %v", e.Gene, e.Role, e.Species, e.Wrapped)
}

func (e *ReferenceError) Unwrap() error {
	return e.Wrapped
}
