package repository

import (
	"errors"
	"fmt"

	"github.com/vietanh2810/eventbooking-api/internal/domain"
	"github.com/vietanh2810/eventbooking-api/internal/repository/dao"
)

var (
	ErrUsernameExists = dao.ErrUsernameExists
	ErrUserNotFound   = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrEventNotFound  = fmt.Errorf("event %w", domain.ErrNotFound)
	ErrLockConflict   = fmt.Errorf("event lock %w", domain.ErrConflict)
)

func mapDAOError(err error) error {
	switch {
	case errors.Is(err, dao.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, dao.ErrEventNotFound):
		return ErrEventNotFound
	case errors.Is(err, dao.ErrLockConflict):
		return fmt.Errorf("%w: %w", ErrLockConflict, err)
	}
	return err
}
