package service

import (
	"errors"
	"fmt"

	"property-listings/internal/apperror"

	"gorm.io/gorm"
)

// storeError converts a persistence failure into the apperror taxonomy.
// notFound describes the missing record.
func storeError(err error, notFound string, args ...any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NotFound(notFound, args...)
	case apperror.KindOf(err) != apperror.KindInternal:
		return err
	default:
		return apperror.Internal(err, "store failure: "+fmt.Sprintf(notFound, args...))
	}
}
