package dao

import "errors"

// Database errors
var (
	ErrMissingID     = errors.New("missing id field")
	ErrNoSuchElement = errors.New("element does not exist")
	ErrPathTooLong   = errors.New("computed full path exceeds maximum length")
	ErrCyclicMove    = errors.New("target parent is a descendant of the element being moved")
	ErrStaleVersion  = errors.New("element is not based on the latest stored data")
	ErrDuplicateKey  = errors.New("an element with this key already exists under the target parent")
	ErrRootImmutable = errors.New("the root element cannot be moved, renamed or deleted")
)
