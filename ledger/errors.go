package ledger

// The operation error taxonomy. Every error carries an i18n message key so
// handlers can answer in the caller's language; none of them is fatal.

// ValidationError covers missing or malformed fields, password mismatches
// and duplicate identifiers. The operation is aborted before any state
// change, so nothing is persisted.
type ValidationError struct {
	Key   string // i18n message key
	Field string // offending field, empty when not field-specific
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "validation: " + e.Key + " (" + e.Field + ")"
	}
	return "validation: " + e.Key
}

// PermissionError means the signed-in account's role does not allow the
// operation.
type PermissionError struct {
	Key string
}

func (e *PermissionError) Error() string { return "permission: " + e.Key }

// LockedError means a write was attempted on a locked site. The lock/unlock
// toggle itself is the only operation exempt from this check.
type LockedError struct {
	Key string
}

func (e *LockedError) Error() string { return "locked: " + e.Key }

func validationErr(key string) error  { return &ValidationError{Key: key} }
func permissionErr() error            { return &PermissionError{Key: "AdminOnly"} }
func lockedErr() error                { return &LockedError{Key: "SiteLocked"} }
