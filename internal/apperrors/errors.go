package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the caller lacks the privilege for the attempted action.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates that the resource is in a state that does not permit the action.
var ErrConflict = errors.New("conflict with current resource state")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// Signing error kinds, raised by the signing engine and mapped to structured
// HTTP responses by the handlers.

// ErrNotEligible indicates the caller is not an officer of the flow and no valid
// substitution applies.
var ErrNotEligible = errors.New("caller is not eligible to sign this flow")

// ErrSubstitutionNotConfirmed indicates a substitute signing was attempted without
// explicit confirmation.
var ErrSubstitutionNotConfirmed = errors.New("substitute signing requires explicit confirmation")

// ErrAlreadySigned indicates the caller already holds a signature on the flow.
var ErrAlreadySigned = errors.New("caller has already signed this flow")

// ErrStepLocked indicates a prior step of the document is not yet completed.
var ErrStepLocked = errors.New("a prior step is not completed")

// ErrInvalidTarget indicates a revert target ahead of the document's current progress.
var ErrInvalidTarget = errors.New("revert target is ahead of current progress")
