package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrDealNotFound          = errors.New("deal not found")
	ErrConflictNotFound      = errors.New("conflict not found")
	ErrRepositoryUnavailable = errors.New("repository unavailable")
	ErrIntegrityViolation    = errors.New("integrity violation")
	ErrDealHasOpenConflicts  = errors.New("deal has open conflicts")

	// ErrConflictAlreadyTerminal is an integrity violation: terminal
	// conflicts never transition again.
	ErrConflictAlreadyTerminal = fmt.Errorf("%w: conflict already resolved or dismissed", ErrIntegrityViolation)
)
