package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/DRSN-tech/pos-register/internal/domain"
	"github.com/DRSN-tech/pos-register/pkg/e"
	"github.com/DRSN-tech/pos-register/pkg/logger"
	"github.com/shopspring/decimal"
)

// RegisterUseCase реализует операции кассы над каталогом и корзиной.
// Операции выполняются строго по одной: чтение, проверка, изменение,
// сохранение и отображение завершаются до начала следующей.
type RegisterUseCase struct {
	mu      sync.Mutex
	kv      KVStore
	catalog *CatalogStore
	ledger  *CartLedger
	sink    RenderSink
	seed    domain.Catalog
	logger  logger.Logger
}

func NewRegisterUC(kv KVStore, sink RenderSink, seed domain.Catalog, logger logger.Logger) *RegisterUseCase {
	catalog := NewCatalogStore(kv)

	if seed == nil {
		seed = domain.DefaultCatalog()
	}

	return &RegisterUseCase{
		kv:      kv,
		catalog: catalog,
		ledger:  NewCartLedger(kv, catalog),
		sink:    sink,
		seed:    seed.Clone(),
		logger:  logger,
	}
}

// Init заполняет пустое хранилище стартовыми данными и выполняет первое отображение.
func (r *RegisterUseCase) Init(ctx context.Context) (*domain.View, error) {
	const op = "RegisterUseCase.Init"

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureSeeded(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	view, err := r.render(ctx, "", decimal.Zero)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return view, nil
}

// View возвращает текущее состояние без изменений и без отображения.
func (r *RegisterUseCase) View(ctx context.Context) (*domain.View, error) {
	const op = "RegisterUseCase.View"

	r.mu.Lock()
	defer r.mu.Unlock()

	view, err := r.snapshot(ctx, "", decimal.Zero)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return view, nil
}

// AddToCart добавляет товар в корзину с резервированием остатка.
func (r *RegisterUseCase) AddToCart(ctx context.Context, req *AddToCartReq) (*OperationRes, error) {
	const op = "RegisterUseCase.AddToCart"

	r.mu.Lock()
	defer r.mu.Unlock()

	code := strings.TrimSpace(req.Code)
	line, err := r.ledger.AddItem(ctx, code, req.Quantity)
	if err != nil {
		return r.fail(ctx, op, err)
	}

	r.logger.Infof("Added to cart: code=%s, quantity=%d, line_quantity=%d", code, req.Quantity, line.Quantity)

	res, err := r.succeed(ctx, op, fmt.Sprintf("Added %s (x%d)", line.Name, req.Quantity), decimal.Zero)
	if err != nil {
		return nil, err
	}
	res.Line = line

	return res, nil
}

// ClearCart возвращает остатки в каталог и опустошает корзину.
func (r *RegisterUseCase) ClearCart(ctx context.Context) (*OperationRes, error) {
	const op = "RegisterUseCase.ClearCart"

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ledger.Clear(ctx); err != nil {
		return r.fail(ctx, op, err)
	}

	r.logger.Infof("Cart cleared")

	return r.succeed(ctx, op, "Cart cleared!", decimal.Zero)
}

// Checkout оплачивает корзину и возвращает сдачу.
func (r *RegisterUseCase) Checkout(ctx context.Context, req *CheckoutReq) (*OperationRes, error) {
	const op = "RegisterUseCase.Checkout"

	r.mu.Lock()
	defer r.mu.Unlock()

	receipt, err := r.ledger.Checkout(ctx, req.Cash)
	if err != nil {
		return r.fail(ctx, op, err)
	}

	r.logger.Infof("Transaction complete: receipt_id=%s, total=%s, change=%s",
		receipt.ReceiptID, receipt.Total.StringFixed(2), receipt.Change.StringFixed(2))

	msg := fmt.Sprintf("Transaction complete! Change: %s | Total: %s",
		receipt.Change.StringFixed(2), receipt.Total.StringFixed(2))
	res, err := r.succeed(ctx, op, msg, receipt.Change)
	if err != nil {
		return nil, err
	}
	res.Receipt = receipt

	return res, nil
}

// AddProduct добавляет товар в каталог.
func (r *RegisterUseCase) AddProduct(ctx context.Context, req *AddProductReq) (*OperationRes, error) {
	const op = "RegisterUseCase.AddProduct"

	r.mu.Lock()
	defer r.mu.Unlock()

	product := domain.NewProduct(req.Code, req.Name, req.Price, req.Stock)
	if !product.Valid() {
		return r.fail(ctx, op, e.ErrInvalidProduct)
	}

	if err := r.catalog.Add(ctx, *product); err != nil {
		return r.fail(ctx, op, err)
	}

	r.logger.Infof("Product added: code=%s, name=%s, price=%s, stock=%d",
		product.Code, product.Name, product.Price.StringFixed(2), product.Stock)

	return r.succeed(ctx, op, "Product added!", decimal.Zero)
}

// RemoveProduct удаляет товар из каталога.
// Товар, удерживаемый корзиной, удалить нельзя: иначе строка корзины потеряет свой товар.
func (r *RegisterUseCase) RemoveProduct(ctx context.Context, req *RemoveProductReq) (*OperationRes, error) {
	const op = "RegisterUseCase.RemoveProduct"

	r.mu.Lock()
	defer r.mu.Unlock()

	code := strings.TrimSpace(req.Code)

	cart, err := r.ledger.Load(ctx)
	if err != nil {
		return r.fail(ctx, op, err)
	}

	if cart.Line(code) != nil {
		return r.fail(ctx, op, e.ErrProductReserved)
	}

	if err := r.catalog.Remove(ctx, code); err != nil {
		return r.fail(ctx, op, err)
	}

	r.logger.Infof("Product removed: code=%s", code)

	return r.succeed(ctx, op, "Product removed!", decimal.Zero)
}

// ResetAll очищает хранилище сессии и заново заполняет его стартовыми данными.
func (r *RegisterUseCase) ResetAll(ctx context.Context) (*OperationRes, error) {
	const op = "RegisterUseCase.ResetAll"

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.kv.Clear(ctx); err != nil {
		return r.fail(ctx, op, err)
	}

	if err := r.ensureSeeded(ctx); err != nil {
		return r.fail(ctx, op, err)
	}

	r.logger.Infof("Register reset to seed catalog (%d products)", len(r.seed))

	return r.succeed(ctx, op, "Register reset!", decimal.Zero)
}

func (r *RegisterUseCase) ensureSeeded(ctx context.Context) error {
	seeded, err := r.catalog.Seed(ctx, r.seed)
	if err != nil {
		return err
	}

	if seeded {
		r.logger.Infof("Seeded catalog with %d products", len(r.seed))
	}

	return r.ledger.Seed(ctx)
}

func (r *RegisterUseCase) succeed(ctx context.Context, op, msg string, change decimal.Decimal) (*OperationRes, error) {
	view, err := r.render(ctx, msg, change)
	if err != nil {
		r.logger.Errorf(err, "%s: failed to build view", op)
		return nil, e.Wrap(op, err)
	}

	return NewOperationRes(view), nil
}

// fail отображает сообщение об ошибке проверки и возвращает ошибку вместе с текущим состоянием.
// Ошибки хранилища не отображаются и возвращаются без состояния.
func (r *RegisterUseCase) fail(ctx context.Context, op string, err error) (*OperationRes, error) {
	msg, ok := userMessage(err)
	if !ok {
		r.logger.Errorf(err, "%s failed", op)
		return nil, e.Wrap(op, err)
	}

	r.logger.Warnf("%s rejected: %v", op, err)

	view, viewErr := r.render(ctx, msg, decimal.Zero)
	if viewErr != nil {
		r.logger.Errorf(viewErr, "%s: failed to build view", op)
		return nil, e.Wrap(op, err)
	}

	return NewOperationRes(view), e.Wrap(op, err)
}

func (r *RegisterUseCase) render(ctx context.Context, msg string, change decimal.Decimal) (*domain.View, error) {
	view, err := r.snapshot(ctx, msg, change)
	if err != nil {
		return nil, err
	}

	if r.sink != nil {
		r.sink.Render(ctx, view)
	}

	return view, nil
}

func (r *RegisterUseCase) snapshot(ctx context.Context, msg string, change decimal.Decimal) (*domain.View, error) {
	products, err := r.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}

	cart, err := r.ledger.Load(ctx)
	if err != nil {
		return nil, err
	}

	return domain.NewView(products, cart, msg, change), nil
}

// userMessage возвращает сообщение для кассира по ошибке проверки.
func userMessage(err error) (string, bool) {
	var cashErr *e.InsufficientCashError

	switch {
	case errors.As(err, &cashErr):
		return fmt.Sprintf("Not enough cash! Total: %s", cashErr.Total.StringFixed(2)), true
	case errors.Is(err, e.ErrProductNotFound):
		return "Product not found!", true
	case errors.Is(err, e.ErrInsufficientStock):
		return "Not enough stock!", true
	case errors.Is(err, e.ErrInvalidQuantity):
		return "Quantity must be a positive number!", true
	case errors.Is(err, e.ErrEmptyCart):
		return "Cart is empty!", true
	case errors.Is(err, e.ErrInvalidCash):
		return "Cash must not be negative!", true
	case errors.Is(err, e.ErrDuplicateCode):
		return "Product code already exists!", true
	case errors.Is(err, e.ErrInvalidProduct):
		return "Product needs a code, a name, a non-negative price and stock!", true
	case errors.Is(err, e.ErrProductReserved):
		return "Product is in the cart; clear the cart before removing it!", true
	default:
		return "", false
	}
}
