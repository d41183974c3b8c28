package service

import "github.com/carlot/carlot/internal/model"

// authorizeOwner is the single ownership guard for car operations.
// A nil car means the lookup found nothing.
func authorizeOwner(car *model.Car, callerID string) error {
	if car == nil {
		return ErrCarNotFound
	}
	if !car.OwnedBy(callerID) {
		return ErrNotOwner
	}
	return nil
}
