package http

import (
	"net/http"

	"github.com/DRSN-tech/pos-register/internal/infrastructure/render"
	"github.com/DRSN-tech/pos-register/internal/usecase"
	"github.com/DRSN-tech/pos-register/pkg/e"
	"github.com/DRSN-tech/pos-register/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type RegisterHandler struct {
	registerUsecase usecase.RegisterUC
	validate        *validator.Validate
	logger          logger.Logger
}

func NewRegisterHandler(registerUsecase usecase.RegisterUC, logger logger.Logger) *RegisterHandler {
	return &RegisterHandler{
		registerUsecase: registerUsecase,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		logger:          logger,
	}
}

// getView возвращает текущее состояние кассы; ?format=text отдает текстовое представление.
func (h *RegisterHandler) getView(w http.ResponseWriter, r *http.Request) {
	view, err := h.registerUsecase.View(r.Context())
	if err != nil {
		h.logger.Errorf(err, "failed to load register view")
		WriteError(w, err, nil)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(render.FormatText(view)))
		return
	}

	WriteSuccess(w, http.StatusOK, view)
}

func (h *RegisterHandler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.registerUsecase.AddToCart(r.Context(), usecase.NewAddToCartReq(req.Code, req.Quantity))
	h.respond(w, res, err)
}

func (h *RegisterHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	res, err := h.registerUsecase.ClearCart(r.Context())
	h.respond(w, res, err)
}

func (h *RegisterHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := checkMoney(req.Cash); err != nil {
		h.logger.Warnf("%d %s: cash %s", http.StatusBadRequest, err.Error(), req.Cash.String())
		WriteError(w, err, nil)
		return
	}

	res, err := h.registerUsecase.Checkout(r.Context(), usecase.NewCheckoutReq(req.Cash))
	h.respond(w, res, err)
}

func (h *RegisterHandler) addProduct(w http.ResponseWriter, r *http.Request) {
	var req AddProductRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := checkMoney(req.Price); err != nil {
		h.logger.Warnf("%d %s: price %s", http.StatusBadRequest, err.Error(), req.Price.String())
		WriteError(w, err, nil)
		return
	}

	res, err := h.registerUsecase.AddProduct(r.Context(), usecase.NewAddProductReq(req.Code, req.Name, req.Price, req.Stock))
	h.respondStatus(w, res, err, http.StatusCreated)
}

func (h *RegisterHandler) removeProduct(w http.ResponseWriter, r *http.Request) {
	res, err := h.registerUsecase.RemoveProduct(r.Context(), usecase.NewRemoveProductReq(chi.URLParam(r, "code")))
	h.respond(w, res, err)
}

func (h *RegisterHandler) resetAll(w http.ResponseWriter, r *http.Request) {
	res, err := h.registerUsecase.ResetAll(r.Context())
	h.respond(w, res, err)
}

func (h *RegisterHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		h.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err, nil)
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.Wrap(err.Error(), e.ErrStatusBadRequest), nil)
		return false
	}

	return true
}

func (h *RegisterHandler) respond(w http.ResponseWriter, res *usecase.OperationRes, err error) {
	h.respondStatus(w, res, err, http.StatusOK)
}

func (h *RegisterHandler) respondStatus(w http.ResponseWriter, res *usecase.OperationRes, err error, status int) {
	if err != nil {
		if res != nil {
			WriteError(w, err, res.View)
			return
		}

		h.logger.Errorf(err, "register operation failed")
		WriteError(w, err, nil)
		return
	}

	WriteSuccess(w, status, NewOperationResponse(res))
}
