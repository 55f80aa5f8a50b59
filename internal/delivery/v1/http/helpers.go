package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/DRSN-tech/pos-register/internal/domain"
	"github.com/DRSN-tech/pos-register/internal/usecase"
	"github.com/DRSN-tech/pos-register/pkg/e"
	"github.com/shopspring/decimal"
)

const maxBodySize = 1 << 20

type ErrorResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	View    *domain.View `json:"view,omitempty"`
}

// OperationResponse отдается на успешную операцию кассы.
type OperationResponse struct {
	View    *domain.View           `json:"view"`
	Line    *domain.CartLine       `json:"line,omitempty"`
	Receipt *domain.CheckoutResult `json:"receipt,omitempty"`
}

type AddToCartRequest struct {
	Code     string `json:"code" validate:"required,max=64"`
	Quantity int    `json:"quantity"`
}

type CheckoutRequest struct {
	Cash decimal.Decimal `json:"cash"`
}

type AddProductRequest struct {
	Code  string          `json:"code" validate:"required,max=64"`
	Name  string          `json:"name" validate:"required,max=128"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock" validate:"gte=0"`
}

func NewErrorResponse(code int, message string, view *domain.View) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
		View:    view,
	}
}

func NewOperationResponse(res *usecase.OperationRes) *OperationResponse {
	return &OperationResponse{
		View:    res.View,
		Line:    res.Line,
		Receipt: res.Receipt,
	}
}

func ToHTTPResponse(err error) (int, string) {
	var cashErr *e.InsufficientCashError

	switch {
	case errors.As(err, &cashErr):
		return http.StatusUnprocessableEntity, cashErr.Error()
	case errors.Is(err, e.ErrInsufficientStock):
		return http.StatusUnprocessableEntity, e.ErrInsufficientStock.Error()
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, e.ErrProductNotFound.Error()
	case errors.Is(err, e.ErrDuplicateCode):
		return http.StatusConflict, e.ErrDuplicateCode.Error()
	case errors.Is(err, e.ErrProductReserved):
		return http.StatusConflict, e.ErrProductReserved.Error()
	case errors.Is(err, e.ErrEmptyCart):
		return http.StatusConflict, e.ErrEmptyCart.Error()
	case errors.Is(err, e.ErrInvalidQuantity):
		return http.StatusBadRequest, e.ErrInvalidQuantity.Error()
	case errors.Is(err, e.ErrInvalidProduct):
		return http.StatusBadRequest, e.ErrInvalidProduct.Error()
	case errors.Is(err, e.ErrInvalidCash):
		return http.StatusBadRequest, e.ErrInvalidCash.Error()
	case errors.Is(err, e.ErrInvalidPrice):
		return http.StatusBadRequest, e.ErrInvalidPrice.Error()
	case errors.Is(err, e.ErrPricePrecision):
		return http.StatusBadRequest, e.ErrPricePrecision.Error()
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

// WriteError пишет ошибку; view прикладывается, если операция вернула состояние.
func WriteError(w http.ResponseWriter, err error, view *domain.View) {
	code, msg := ToHTTPResponse(err)
	if code == http.StatusInternalServerError {
		view = nil
	}
	WriteSuccess(w, code, NewErrorResponse(code, msg, view))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса, отклоняя неизвестные поля.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return e.Wrap("empty body", e.ErrStatusBadRequest)
		}
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}

	return nil
}

// checkMoney проверяет денежную сумму: не больше двух знаков после запятой и разумный предел.
func checkMoney(d decimal.Decimal) error {
	maxAmount := decimal.NewFromInt(1_000_000_000)

	if d.GreaterThan(maxAmount) {
		return e.ErrInvalidPrice
	}

	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return e.ErrPricePrecision
	}

	return nil
}
