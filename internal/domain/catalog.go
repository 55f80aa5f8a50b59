package domain

import "github.com/DRSN-tech/pos-register/pkg/e"

// Catalog хранит товары в порядке добавления, коды уникальны.
type Catalog []Product

// FindByCode возвращает указатель на товар внутри каталога или nil.
func (c Catalog) FindByCode(code string) *Product {
	for i := range c {
		if c[i].Code == code {
			return &c[i]
		}
	}

	return nil
}

// Add добавляет товар в конец каталога.
func (c *Catalog) Add(p Product) error {
	if c.FindByCode(p.Code) != nil {
		return e.ErrDuplicateCode
	}

	*c = append(*c, p)
	return nil
}

// Remove удаляет товар, сохраняя порядок остальных.
func (c *Catalog) Remove(code string) error {
	for i := range *c {
		if (*c)[i].Code == code {
			*c = append((*c)[:i:i], (*c)[i+1:]...)
			return nil
		}
	}

	return e.ErrProductNotFound
}

// AdjustStock прибавляет delta к остатку товара.
// Неотрицательность остатка обеспечивает вызывающая сторона.
func (c Catalog) AdjustStock(code string, delta int) error {
	p := c.FindByCode(code)
	if p == nil {
		return e.ErrProductNotFound
	}

	p.Stock += delta
	return nil
}

// Clone возвращает независимую копию каталога.
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	copy(out, c)
	return out
}
