package usecase

import (
	"context"

	"github.com/DRSN-tech/pos-register/internal/domain"
	"github.com/DRSN-tech/pos-register/pkg/e"
)

// CatalogStore владеет списком товаров и сохраняет его целиком после каждого изменения.
type CatalogStore struct {
	kv KVStore
}

func NewCatalogStore(kv KVStore) *CatalogStore {
	return &CatalogStore{kv: kv}
}

// Load возвращает текущий каталог.
func (s *CatalogStore) Load(ctx context.Context) (domain.Catalog, error) {
	const op = "CatalogStore.Load"

	catalog := domain.Catalog{}
	if err := loadJSON(ctx, s.kv, ProductsKey, &catalog); err != nil {
		return nil, e.Wrap(op, err)
	}

	return catalog, nil
}

// FindByCode возвращает товар по коду или nil, если товара нет.
func (s *CatalogStore) FindByCode(ctx context.Context, code string) (*domain.Product, error) {
	catalog, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	p := catalog.FindByCode(code)
	if p == nil {
		return nil, nil
	}

	product := *p
	return &product, nil
}

// Add добавляет товар. Проверку полей выполняет вызывающая сторона.
func (s *CatalogStore) Add(ctx context.Context, product domain.Product) error {
	const op = "CatalogStore.Add"

	catalog, err := s.Load(ctx)
	if err != nil {
		return err
	}

	if err := catalog.Add(product); err != nil {
		return e.Wrap(op, err)
	}

	return s.Save(ctx, catalog)
}

// Remove удаляет товар по коду. Резервы в корзине не проверяются.
func (s *CatalogStore) Remove(ctx context.Context, code string) error {
	const op = "CatalogStore.Remove"

	catalog, err := s.Load(ctx)
	if err != nil {
		return err
	}

	if err := catalog.Remove(code); err != nil {
		return e.Wrap(op, err)
	}

	return s.Save(ctx, catalog)
}

// Save сохраняет каталог целиком.
func (s *CatalogStore) Save(ctx context.Context, catalog domain.Catalog) error {
	const op = "CatalogStore.Save"

	raw, err := s.encode(catalog)
	if err != nil {
		return e.Wrap(op, err)
	}

	if err := s.kv.Set(ctx, ProductsKey, raw); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// Seed записывает стартовый каталог, если ключ products еще не создан.
func (s *CatalogStore) Seed(ctx context.Context, seed domain.Catalog) (bool, error) {
	const op = "CatalogStore.Seed"

	_, ok, err := s.kv.Get(ctx, ProductsKey)
	if err != nil {
		return false, e.Wrap(op, err)
	}

	if ok {
		return false, nil
	}

	return true, s.Save(ctx, seed.Clone())
}

func (s *CatalogStore) encode(catalog domain.Catalog) (string, error) {
	if catalog == nil {
		catalog = domain.Catalog{}
	}

	return encodeJSON(catalog)
}
