package auth

import (
	"github.com/elementdrive/element-drive-server/metadata/models"
)

// Error is our error type.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrUserNotSpecified is returned if an acting user is required but not specified.
	ErrUserNotSpecified = Error("auth: user not specified")
	// ErrElementNotSpecified is returned if an element is required but not specified.
	ErrElementNotSpecified = Error("auth: element not specified")
)

// Authorization represents a common interface for which any auth implementation is expected to support
type Authorization interface {
	IsAllowed(element models.Element, capability models.Capability, user models.User) bool
	UserPermissions(element models.Element, user models.User) map[models.Capability]bool
	AreAllowed(elements []models.Element, capabilities []models.Capability, user models.User) []map[models.Capability]bool
	HasChildren(element models.Element, user models.User) bool
	ChildAmount(element models.Element, user models.User) int
}
