package errors

// Error code constants organized by category
// E001-E099: Precondition errors
// E100-E199: Lookup misses (informational)
// E200-E299: Structural inconsistencies
// E300-E399: Document I/O errors

const (
	// Precondition errors (E001-E099)
	ErrNoActiveSkeleton = "E001"
	ErrWrongMode        = "E002"
	ErrNilRig           = "E003"

	// Lookup misses (E100-E199)
	ErrBoneNotFound   = "E100"
	ErrSourceNotFound = "E101"

	// Structural inconsistencies (E200-E299)
	ErrRenameCollision   = "E200"
	ErrDuplicateName     = "E201"
	ErrCycle             = "E202"
	ErrAmbiguousBone     = "E203"
	ErrDanglingReference = "E204"
	ErrUnknownBone       = "E205"
	ErrEmptyName         = "E206"

	// Document I/O errors (E300-E399)
	ErrUnreadableDocument = "E300"
	ErrUnknownFormat      = "E301"
	ErrInvalidVector      = "E302"
	ErrInvalidConstraint  = "E303"
	ErrInvalidMode        = "E304"
)

// Category groups error codes by how callers are expected to react
type Category string

const (
	CategoryPrecondition Category = "precondition"
	CategoryLookup       Category = "lookup"
	CategoryStructural   Category = "structural"
	CategoryDocument     Category = "document"
	CategoryUnknown      Category = "unknown"
)

// CategoryOf returns the category an error code belongs to
func CategoryOf(code string) Category {
	if len(code) != 4 || code[0] != 'E' {
		return CategoryUnknown
	}
	switch code[1] {
	case '0':
		return CategoryPrecondition
	case '1':
		return CategoryLookup
	case '2':
		return CategoryStructural
	case '3':
		return CategoryDocument
	default:
		return CategoryUnknown
	}
}
