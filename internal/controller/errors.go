package controller

import (
	"github.com/pkg/errors"

	"github.com/san-kum/phrictl/internal/registry"
)

var (
	// ErrDuplicateID indicates a name already used in the target collection.
	ErrDuplicateID = registry.ErrDuplicateID

	// ErrNotFound indicates an unknown name.
	ErrNotFound = registry.ErrNotFound

	// ErrUnboundRobot indicates an operation requiring a robot on a controller without one.
	ErrUnboundRobot = errors.New("controller: no robot bound")

	// ErrUnsupported indicates a value that is neither a generator nor a constraint.
	ErrUnsupported = errors.New("controller: unsupported item type")
)
