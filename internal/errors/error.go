// Package errors defines the error taxonomy shared by every normalization
// stage: precondition failures, lookup misses, structural inconsistencies
// and document I/O problems.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
)

// Severity represents the severity level of an error
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Fatal
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for Severity
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Severity
func (s *Severity) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	switch str {
	case "info":
		*s = Info
	case "warning":
		*s = Warning
	case "error":
		*s = Error
	case "fatal":
		*s = Fatal
	default:
		*s = Error
	}
	return nil
}

// RigError is the error value produced by the normalization stages
type RigError struct {
	Phase    string     // "naming", "chains", "prune", "constraints", "document", "pipeline"
	Code     string     // "E001", "E200", etc.
	Message  string     // Human-readable message
	Bone     string     // Offending bone name, if any
	Document string     // Rig document path, when processing files
	Severity Severity   // Error, Warning, Info
	Related  []RigError // Further occurrences of the same problem
}

// Error implements the error interface
func (e RigError) Error() string {
	if e.Bone != "" {
		return fmt.Sprintf("%s: %s: %s (bone %q)", e.Phase, e.Code, e.Message, e.Bone)
	}
	return fmt.Sprintf("%s: %s: %s", e.Phase, e.Code, e.Message)
}

// New creates a RigError at Error severity
func New(phase, code, message string) RigError {
	return RigError{
		Phase:    phase,
		Code:     code,
		Message:  message,
		Severity: Error,
		Related:  []RigError{},
	}
}

// Newf creates a RigError with a formatted message
func Newf(phase, code, format string, args ...interface{}) RigError {
	return New(phase, code, fmt.Sprintf(format, args...))
}

// WithBone attaches the offending bone name
func (e RigError) WithBone(name string) RigError {
	e.Bone = name
	return e
}

// WithDocument attaches the rig document path
func (e RigError) WithDocument(path string) RigError {
	e.Document = path
	return e
}

// WithSeverity overrides the severity
func (e RigError) WithSeverity(s Severity) RigError {
	e.Severity = s
	return e
}

// WithRelated adds a related error
func (e RigError) WithRelated(related RigError) RigError {
	e.Related = append(e.Related, related)
	return e
}

// Category returns the category of the error code
func (e RigError) Category() Category {
	return CategoryOf(e.Code)
}

// MarshalJSON implements json.Marshaler
func (e RigError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Phase    string     `json:"phase"`
		Code     string     `json:"code"`
		Category Category   `json:"category"`
		Message  string     `json:"message"`
		Bone     string     `json:"bone,omitempty"`
		Document string     `json:"document,omitempty"`
		Severity Severity   `json:"severity"`
		Related  []RigError `json:"related,omitempty"`
	}{
		Phase:    e.Phase,
		Code:     e.Code,
		Category: e.Category(),
		Message:  e.Message,
		Bone:     e.Bone,
		Document: e.Document,
		Severity: e.Severity,
		Related:  e.Related,
	})
}

// IsError returns true if the error is at Error or Fatal severity
func (e RigError) IsError() bool {
	return e.Severity == Error || e.Severity == Fatal
}

// IsWarning returns true if the error is at Warning severity
func (e RigError) IsWarning() bool {
	return e.Severity == Warning
}

// As extracts a RigError from a (possibly wrapped) error
func As(err error) (RigError, bool) {
	var re RigError
	if stderrors.As(err, &re) {
		return re, true
	}
	return RigError{}, false
}

// IsPrecondition reports whether err is a precondition failure
func IsPrecondition(err error) bool {
	re, ok := As(err)
	return ok && re.Category() == CategoryPrecondition
}

// IsStructural reports whether err is a structural inconsistency
func IsStructural(err error) bool {
	re, ok := As(err)
	return ok && re.Category() == CategoryStructural
}

// IsDocument reports whether err is a document I/O problem
func IsDocument(err error) bool {
	re, ok := As(err)
	return ok && re.Category() == CategoryDocument
}

// HasCode reports whether err carries the given code
func HasCode(err error, code string) bool {
	re, ok := As(err)
	return ok && re.Code == code
}
