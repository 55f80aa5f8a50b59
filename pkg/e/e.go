package e

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Ошибки каталога и корзины
	ErrProductNotFound   = fmt.Errorf("product not found")
	ErrDuplicateCode     = fmt.Errorf("product code already exists")
	ErrInsufficientStock = fmt.Errorf("not enough stock")
	ErrInsufficientCash  = fmt.Errorf("not enough cash")
	ErrEmptyCart         = fmt.Errorf("cart is empty")
	ErrProductReserved   = fmt.Errorf("product is reserved in cart")

	// 400 Bad Request
	ErrInvalidQuantity  = fmt.Errorf("quantity must be positive")
	ErrInvalidProduct   = fmt.Errorf("invalid product")
	ErrInvalidCash      = fmt.Errorf("cash must not be negative")
	ErrInvalidPrice     = fmt.Errorf("invalid price")
	ErrPricePrecision   = fmt.Errorf("price must have at most 2 decimal places")
	ErrStatusBadRequest = fmt.Errorf("bad request")

	// Внутренние ошибки
	ErrInternalServerError  = fmt.Errorf("internal server error")
	ErrTransactionNotFound  = fmt.Errorf("transaction not found")
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
	ErrCorruptedState       = fmt.Errorf("corrupted stored state")
)

// InsufficientCashError сообщает итог чека и недостающую сумму.
type InsufficientCashError struct {
	Total decimal.Decimal
	Cash  decimal.Decimal
}

func (err *InsufficientCashError) Error() string {
	return fmt.Sprintf("%s: total %s, cash %s, short by %s",
		ErrInsufficientCash.Error(), err.Total.StringFixed(2), err.Cash.StringFixed(2), err.Shortfall().StringFixed(2))
}

// Shortfall возвращает сумму, которой не хватает до оплаты чека.
func (err *InsufficientCashError) Shortfall() decimal.Decimal {
	return err.Total.Sub(err.Cash)
}

func (err *InsufficientCashError) Unwrap() error {
	return ErrInsufficientCash
}

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
