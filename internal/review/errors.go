package review

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Brodino96/TasteTracker/internal/domain"
	apperrors "github.com/Brodino96/TasteTracker/pkg/errors"
)

// Sentinels matched with errors.Is. Every error returned by Submit wraps
// exactly one of them inside an *apperrors.AppError.
var (
	ErrUnauthenticated      = errors.New("no acting user")
	ErrInvalidRating        = domain.ErrInvalidRating
	ErrPersistenceFailure   = errors.New("review store failure")
	ErrSubmissionInProgress = errors.New("submission already in progress")
)

// Error codes written to the response envelope.
const (
	CodeUnauthenticated      = "UNAUTHENTICATED"
	CodeInvalidRating        = "INVALID_RATING"
	CodePersistenceFailure   = "PERSISTENCE_FAILURE"
	CodeSubmissionInProgress = "SUBMISSION_IN_PROGRESS"
)

func unauthenticated() *apperrors.AppError {
	return apperrors.New(CodeUnauthenticated, "sign in to submit a review",
		http.StatusUnauthorized, ErrUnauthenticated)
}

func invalidRating() *apperrors.AppError {
	return apperrors.New(CodeInvalidRating, ErrInvalidRating.Error(),
		http.StatusBadRequest, ErrInvalidRating)
}

// persistenceFailure surfaces the store's own message to the caller.
func persistenceFailure(cause error) *apperrors.AppError {
	return &apperrors.AppError{
		Code:    CodePersistenceFailure,
		Message: cause.Error(),
		Status:  http.StatusBadGateway,
		Err:     fmt.Errorf("%w: %w", ErrPersistenceFailure, cause),
	}
}

func submissionInProgress() *apperrors.AppError {
	return apperrors.New(CodeSubmissionInProgress,
		"a review for this dish is already being submitted",
		http.StatusConflict, ErrSubmissionInProgress)
}
