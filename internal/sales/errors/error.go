// Package errors provides custom error types for sales operations.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError reports a sale request exceeding the available
// stock. It matches ErrInsufficientStock under errors.Is and carries the
// available quantity for display.
type InsufficientStockError struct {
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: available %d, requested %d", e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
