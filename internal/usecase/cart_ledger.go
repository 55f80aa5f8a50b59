package usecase

import (
	"context"
	"errors"

	"github.com/DRSN-tech/pos-register/internal/domain"
	"github.com/DRSN-tech/pos-register/pkg/e"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLedger владеет строками корзины и резервирует под них остатки каталога.
// Каждая операция читает оба хранилища, проверяет условия до любых изменений
// и сохраняет результат одной записью.
type CartLedger struct {
	kv      KVStore
	catalog *CatalogStore
}

func NewCartLedger(kv KVStore, catalog *CatalogStore) *CartLedger {
	return &CartLedger{
		kv:      kv,
		catalog: catalog,
	}
}

// Load возвращает текущую корзину.
func (l *CartLedger) Load(ctx context.Context) (domain.Cart, error) {
	const op = "CartLedger.Load"

	cart := domain.Cart{}
	if err := loadJSON(ctx, l.kv, CartKey, &cart); err != nil {
		return nil, e.Wrap(op, err)
	}

	return cart, nil
}

// AddItem резервирует quantity единиц товара и добавляет их в корзину.
// Порядок проверок: наличие товара, корректность количества, достаточность остатка.
func (l *CartLedger) AddItem(ctx context.Context, code string, quantity int) (*domain.CartLine, error) {
	const op = "CartLedger.AddItem"

	catalog, err := l.catalog.Load(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	cart, err := l.Load(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	product := catalog.FindByCode(code)
	if product == nil {
		return nil, e.Wrap(op, e.ErrProductNotFound)
	}

	if quantity <= 0 {
		return nil, e.Wrap(op, e.ErrInvalidQuantity)
	}

	if quantity > product.Stock {
		return nil, e.Wrap(op, e.ErrInsufficientStock)
	}

	// Резерв: остаток списывается сразу, а не при оплате
	line := cart.Merge(product, quantity)
	if err := catalog.AdjustStock(code, -quantity); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := l.persist(ctx, catalog, cart); err != nil {
		return nil, e.Wrap(op, err)
	}

	return &line, nil
}

// Clear возвращает зарезервированные остатки в каталог и опустошает корзину.
// Строки, чьих товаров больше нет в каталоге, отбрасываются без возврата остатка.
func (l *CartLedger) Clear(ctx context.Context) error {
	const op = "CartLedger.Clear"

	catalog, err := l.catalog.Load(ctx)
	if err != nil {
		return e.Wrap(op, err)
	}

	cart, err := l.Load(ctx)
	if err != nil {
		return e.Wrap(op, err)
	}

	for _, line := range cart {
		err := catalog.AdjustStock(line.Code, line.Quantity)
		if err != nil && !errors.Is(err, e.ErrProductNotFound) {
			return e.Wrap(op, err)
		}
	}

	if err := l.persist(ctx, catalog, domain.Cart{}); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// Checkout проводит оплату корзины. Остатки не восстанавливаются: резерв считается проданным.
func (l *CartLedger) Checkout(ctx context.Context, cash decimal.Decimal) (*domain.CheckoutResult, error) {
	const op = "CartLedger.Checkout"

	cart, err := l.Load(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if len(cart) == 0 {
		return nil, e.Wrap(op, e.ErrEmptyCart)
	}

	if cash.IsNegative() {
		return nil, e.Wrap(op, e.ErrInvalidCash)
	}

	total := cart.Total()
	if cash.LessThan(total) {
		return nil, e.Wrap(op, &e.InsufficientCashError{Total: total, Cash: cash})
	}

	raw, err := encodeJSON(domain.Cart{})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := l.kv.Set(ctx, CartKey, raw); err != nil {
		return nil, e.Wrap(op, err)
	}

	return &domain.CheckoutResult{
		ReceiptID: uuid.NewString(),
		Total:     total,
		Cash:      cash,
		Change:    cash.Sub(total),
	}, nil
}

// ComputeTotal возвращает сумму подытогов корзины без побочных эффектов.
func (l *CartLedger) ComputeTotal(ctx context.Context) (decimal.Decimal, error) {
	cart, err := l.Load(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return cart.Total(), nil
}

// Seed создает пустую корзину, если ключ cart еще не создан.
func (l *CartLedger) Seed(ctx context.Context) error {
	const op = "CartLedger.Seed"

	_, ok, err := l.kv.Get(ctx, CartKey)
	if err != nil {
		return e.Wrap(op, err)
	}

	if ok {
		return nil
	}

	raw, err := encodeJSON(domain.Cart{})
	if err != nil {
		return e.Wrap(op, err)
	}

	return l.kv.Set(ctx, CartKey, raw)
}

// persist сохраняет каталог и корзину одной атомарной записью.
func (l *CartLedger) persist(ctx context.Context, catalog domain.Catalog, cart domain.Cart) error {
	products, err := l.catalog.encode(catalog)
	if err != nil {
		return err
	}

	if cart == nil {
		cart = domain.Cart{}
	}

	lines, err := encodeJSON(cart)
	if err != nil {
		return err
	}

	return l.kv.SetMany(ctx, map[string]string{
		ProductsKey: products,
		CartKey:     lines,
	})
}
