package manager

import "errors"

var (
	// ErrAlreadyExists indicates that an instance with the same identity is stored.
	ErrAlreadyExists = errors.New("manager: instance already exists")

	// ErrUnknownType indicates an instance whose type is not registered.
	ErrUnknownType = errors.New("manager: unknown type")

	// ErrEndpointMismatch indicates a relation whose endpoint entities do not have
	// the entity types of the relation type.
	ErrEndpointMismatch = errors.New("manager: relation endpoint type mismatch")

	// ErrNotMember indicates an entity that does not belong to the flow.
	ErrNotMember = errors.New("manager: entity is not a flow member")
)
