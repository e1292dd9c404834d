package service

import (
	"errors"
	"fmt"
)

// --- Error Definitions ---
// Handlers map these to HTTP status codes; wrap them with fmt.Errorf("%w") to add detail.
var (
	ErrValidation   = errors.New("invalid input")
	ErrAccessDenied = errors.New("access denied")

	// accounts
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrAccountLocked        = errors.New("account is locked")
	ErrWrongPassword        = errors.New("current password is incorrect")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")

	// packages and registrations
	ErrPackageNotFound      = errors.New("package not found")
	ErrPackageNotOnSale     = errors.New("package is not on sale")
	ErrSubscriptionNotFound = errors.New("registration not found")
	ErrSubscriptionExists   = errors.New("member already has a pending or active registration")
	ErrSubscriptionState    = errors.New("registration cannot change from its current status")
	ErrNoActiveSubscription = errors.New("member has no active registration")
	ErrNoSessionsLeft       = errors.New("no PT sessions left on the registration")

	// sessions
	ErrSessionNotFound     = errors.New("session not found")
	ErrInvalidTransition   = errors.New("session status transition not allowed")
	ErrSessionChanged      = errors.New("session status changed concurrently")
	ErrOutsideSchedule     = errors.New("slot is outside the PT's work schedule")
	ErrSessionOverlap      = errors.New("slot overlaps another session")
	ErrSessionNotCompleted = errors.New("session is not completed")

	ErrHistoryNotFound  = errors.New("workout history not found")
	ErrReviewExists     = errors.New("session has already been reviewed")
	ErrTemplateNotFound = errors.New("template not found")
	ErrMealNotFound     = errors.New("meal not found")
	ErrMealPlanNotFound = errors.New("meal plan not found")

	// check-in
	ErrInvalidQRToken = errors.New("invalid or expired check-in code")
	ErrScanInProgress = errors.New("a scan for this member is already being processed")

	// uploads
	ErrUploadNotFound         = errors.New("upload not found")
	ErrUnsupportedContentType = errors.New("only image uploads are allowed")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
