package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be resolved.
// Providers wrap it for every business miss (unknown currency, malformed
// snapshot) so that callers see one uniform "absent" result.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")
