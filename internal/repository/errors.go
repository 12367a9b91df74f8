package repository

import "errors"

var (
	// ErrConflict reports an insert that hit an existing key.
	ErrConflict = errors.New("already exists")
	// ErrApplicantNotFound aborts a pass write whose owner has no applicant record.
	ErrApplicantNotFound = errors.New("applicant not found")
)
