package api

import (
	"fmt"

	"github.com/pageza/foodgram/backend/internal/service"
)

func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, service.ErrNotFound)
}

func badQuery(param, format string, args ...interface{}) error {
	return &service.ValidationError{Field: param, Message: fmt.Sprintf(format, args...)}
}
