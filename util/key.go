package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/elementdrive/element-drive-server/metadata/models"
)

// MaxKeyLength is the longest permitted path segment.
const MaxKeyLength = 255

var (
	// Document keys are restricted to url-safe characters.
	documentKeyPattern   = regexp.MustCompile(`^[a-zA-Z0-9_~\-.]+$`)
	documentKeyForbidden = regexp.MustCompile(`[^a-zA-Z0-9_~\-.]`)
	// Asset filenames and object keys forbid filesystem/query metacharacters
	// but otherwise allow arbitrary printable characters.
	assetKeyForbidden  = regexp.MustCompile(`[/\\:*?"<>|]`)
	objectKeyForbidden = regexp.MustCompile(`[/#?*:\\<>|]`)
	controlChars       = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// ValidateKey checks a proposed path segment against the reserved-character
// and length rules of the given element tree.
func ValidateKey(key string, elementType models.ElementType) error {
	if len(key) == 0 {
		return fmt.Errorf("element key must not be empty")
	}
	if len(key) > MaxKeyLength {
		return fmt.Errorf("element key exceeds %d characters", MaxKeyLength)
	}
	if key == "." || key == ".." {
		return fmt.Errorf("element key %q is reserved", key)
	}
	if key != strings.TrimSpace(key) {
		return fmt.Errorf("element key must not have leading or trailing whitespace")
	}
	if controlChars.MatchString(key) {
		return fmt.Errorf("element key contains control characters")
	}
	switch elementType {
	case models.TypeDocument:
		if !documentKeyPattern.MatchString(key) {
			return fmt.Errorf("document key %q contains characters outside a-zA-Z0-9_.~-", key)
		}
	case models.TypeAsset:
		if assetKeyForbidden.MatchString(key) {
			return fmt.Errorf("asset filename %q contains a reserved character", key)
		}
	case models.TypeObject:
		if objectKeyForbidden.MatchString(key) {
			return fmt.Errorf("object key %q contains a reserved character", key)
		}
	default:
		return fmt.Errorf("unknown element type %q", elementType)
	}
	return nil
}

// SanitizeKey rewrites a proposed path segment into one that passes
// ValidateKey for the given element tree, substituting underscores for
// reserved characters. An empty or reserved-only key sanitizes to "_".
func SanitizeKey(key string, elementType models.ElementType) string {
	key = strings.TrimSpace(key)
	key = controlChars.ReplaceAllString(key, "")
	switch elementType {
	case models.TypeDocument:
		key = documentKeyForbidden.ReplaceAllString(key, "_")
	case models.TypeAsset:
		key = assetKeyForbidden.ReplaceAllString(key, "_")
	default:
		key = objectKeyForbidden.ReplaceAllString(key, "_")
	}
	if len(key) > MaxKeyLength {
		key = key[:MaxKeyLength]
	}
	if key == "" || key == "." || key == ".." {
		key = "_"
	}
	return key
}
