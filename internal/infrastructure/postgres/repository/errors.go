package repository

import (
	"errors"
	"fmt"

	"github.com/channelone/dealreg-conflict-service/internal/domain"
	"gorm.io/gorm"
)

// translate maps gorm/database errors onto the domain taxonomy. Anything not
// recognized as a missing row or a uniqueness breach is treated as a
// transient storage failure and retried at the call site.
func translate(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", domain.ErrIntegrityViolation, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}
}
