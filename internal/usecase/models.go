package usecase

import (
	"github.com/DRSN-tech/pos-register/internal/domain"
	"github.com/shopspring/decimal"
)

// REGISTER USECASE

// AddToCartReq запрашивает добавление товара в корзину.
type AddToCartReq struct {
	Code     string
	Quantity int
}

// CheckoutReq запрашивает оплату корзины наличными.
type CheckoutReq struct {
	Cash decimal.Decimal
}

// AddProductReq запрашивает добавление товара в каталог.
type AddProductReq struct {
	Code  string
	Name  string
	Price decimal.Decimal
	Stock int
}

type RemoveProductReq struct {
	Code string
}

// OperationRes содержит результат операции кассы.
// Line заполняется при добавлении в корзину, Receipt при успешной оплате.
type OperationRes struct {
	View    *domain.View
	Line    *domain.CartLine
	Receipt *domain.CheckoutResult
}

// MAPPERS

func NewAddToCartReq(code string, quantity int) *AddToCartReq {
	return &AddToCartReq{
		Code:     code,
		Quantity: quantity,
	}
}

func NewCheckoutReq(cash decimal.Decimal) *CheckoutReq {
	return &CheckoutReq{Cash: cash}
}

func NewAddProductReq(code, name string, price decimal.Decimal, stock int) *AddProductReq {
	return &AddProductReq{
		Code:  code,
		Name:  name,
		Price: price,
		Stock: stock,
	}
}

func NewRemoveProductReq(code string) *RemoveProductReq {
	return &RemoveProductReq{Code: code}
}

func NewOperationRes(view *domain.View) *OperationRes {
	return &OperationRes{View: view}
}
