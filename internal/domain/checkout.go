package domain

import "github.com/shopspring/decimal"

// CheckoutResult описывает итог успешной оплаты.
type CheckoutResult struct {
	ReceiptID string          `json:"receipt_id"`
	Total     decimal.Decimal `json:"total"`
	Cash      decimal.Decimal `json:"cash"`
	Change    decimal.Decimal `json:"change"`
}

// View описывает состояние, которое получает слой отображения после каждой операции.
type View struct {
	Products Catalog         `json:"products"`
	Cart     Cart            `json:"cart"`
	Message  string          `json:"message"`
	Total    decimal.Decimal `json:"total"`
	Change   decimal.Decimal `json:"change"`
}

func NewView(products Catalog, cart Cart, message string, change decimal.Decimal) *View {
	if products == nil {
		products = Catalog{}
	}
	if cart == nil {
		cart = Cart{}
	}

	return &View{
		Products: products,
		Cart:     cart,
		Message:  message,
		Total:    cart.Total(),
		Change:   change,
	}
}
