package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindInvalidInput    Kind = "invalid_input"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindInvalidState    Kind = "invalid_state"
	KindStorage         Kind = "storage"
)

// Error is a domain failure with a stable code. Two errors match under errors.Is when their codes match.
type Error struct {
	Kind Kind
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

var (
	ErrAccountNotFound = newError(KindNotFound, "ACCOUNT_NOT_FOUND", "User not found")
	ErrListingNotFound = newError(KindNotFound, "LISTING_NOT_FOUND", "Listing not found")
	ErrReviewNotFound  = newError(KindNotFound, "REVIEW_NOT_FOUND", "Review not found")
	ErrImageNotFound   = newError(KindNotFound, "IMAGE_NOT_FOUND", "Image not found")

	ErrEmailTaken    = newError(KindConflict, "EMAIL_TAKEN", "Email already registered")
	ErrUsernameTaken = newError(KindConflict, "USERNAME_TAKEN", "Username already taken")

	ErrInvalidCredentialIdentifier = newError(KindUnauthenticated, "INVALID_CREDENTIAL_IDENTIFIER", "Invalid username")
	ErrNotActivated                = newError(KindUnauthenticated, "NOT_ACTIVATED", "Account not activated. Please wait for admin approval.")
	ErrOTPExpired                  = newError(KindUnauthenticated, "OTP_EXPIRED", "OTP has expired. Please request a new one.")
	ErrOTPMismatch                 = newError(KindUnauthenticated, "OTP_MISMATCH", "Invalid OTP code")
	ErrInvalidToken                = newError(KindUnauthenticated, "INVALID_TOKEN", "Could not validate credentials")
	ErrMissingToken                = newError(KindUnauthenticated, "MISSING_TOKEN", "Not authenticated")

	ErrAccountInactive     = newError(KindForbidden, "ACCOUNT_INACTIVE", "Inactive user")
	ErrAdminRequired       = newError(KindForbidden, "ADMIN_REQUIRED", "Not enough permissions")
	ErrListingAccessDenied = newError(KindForbidden, "LISTING_ACCESS_DENIED", "Access denied")
	ErrNotListingAuthor    = newError(KindForbidden, "NOT_LISTING_AUTHOR", "Only the author can manage this listing")

	ErrAlreadyActive    = newError(KindInvalidState, "ALREADY_ACTIVE", "User is already active")
	ErrAlreadyInactive  = newError(KindInvalidState, "ALREADY_INACTIVE", "User is already inactive")
	ErrSelfDeactivation = newError(KindInvalidState, "SELF_DEACTIVATION", "Cannot deactivate yourself")
	ErrSelfRejection    = newError(KindInvalidState, "SELF_REJECTION", "Cannot reject yourself")
	ErrRejectActive     = newError(KindInvalidState, "REJECT_ACTIVE", "Cannot reject an active user. Use deactivate instead.")
	ErrAlreadyAdmin     = newError(KindInvalidState, "ALREADY_ADMIN", "User is already an admin")
	ErrGrantInactive    = newError(KindInvalidState, "GRANT_INACTIVE", "Cannot make inactive user an admin")
	ErrAlreadyReviewed  = newError(KindInvalidState, "ALREADY_REVIEWED", "Listing has already been reviewed")
	ErrNotApproved      = newError(KindInvalidState, "NOT_APPROVED", "Can only review approved listings")

	ErrWrongPassword    = newError(KindInvalidInput, "WRONG_PASSWORD", "Current password is incorrect")
	ErrInvalidCategory  = newError(KindInvalidInput, "INVALID_CATEGORY", "Invalid category")
	ErrInvalidStatus    = newError(KindInvalidInput, "INVALID_STATUS", "Invalid status")
	ErrInvalidRating    = newError(KindInvalidInput, "INVALID_RATING", "Rating must be between 1 and 5")
	ErrTextTooShort     = newError(KindInvalidInput, "TEXT_TOO_SHORT", "Review text must be at least 10 characters long")
	ErrInvalidClickKind = newError(KindInvalidInput, "INVALID_CLICK_KIND", "Invalid click type")
	ErrNegativeDuration = newError(KindInvalidInput, "NEGATIVE_DURATION", "Duration cannot be negative")
	ErrInvalidImage     = newError(KindInvalidInput, "INVALID_IMAGE", "Only jpeg, png, gif and webp images are allowed")
	ErrImageTooLarge    = newError(KindInvalidInput, "IMAGE_TOO_LARGE", "Image exceeds the upload limit")
)

// InvalidInput reports a request that failed field validation.
func InvalidInput(msg string, err error) *Error {
	return &Error{Kind: KindInvalidInput, Code: "INVALID_INPUT", Msg: msg, Err: err}
}

// Storage wraps an unexpected failure of a backing store.
func Storage(msg string, err error) *Error {
	return &Error{Kind: KindStorage, Code: "STORAGE_ERROR", Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in the chain, KindStorage otherwise.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStorage
}

var statusByKind = map[Kind]int{
	KindNotFound:        http.StatusNotFound,
	KindConflict:        http.StatusConflict,
	KindInvalidInput:    http.StatusBadRequest,
	KindUnauthenticated: http.StatusUnauthorized,
	KindForbidden:       http.StatusForbidden,
	KindInvalidState:    http.StatusBadRequest,
	KindStorage:         http.StatusInternalServerError,
}

// HTTPStatus maps an error to the response status of its kind.
func HTTPStatus(err error) int {
	return statusByKind[KindOf(err)]
}

// Public returns the machine code and message safe to show a client.
func Public(err error) (code, msg string) {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindStorage {
		return appErr.Code, appErr.Msg
	}
	return "INTERNAL_ERROR", "Internal server error"
}
