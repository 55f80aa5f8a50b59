package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product описывает товар каталога
type Product struct {
	Code  string          `json:"code"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"` // Доступный для новых резервов остаток
}

func NewProduct(code, name string, price decimal.Decimal, stock int) *Product {
	return &Product{
		Code:  strings.TrimSpace(code),
		Name:  strings.TrimSpace(name),
		Price: price,
		Stock: stock,
	}
}

// Valid сообщает, можно ли добавить товар в каталог.
func (p *Product) Valid() bool {
	return p.Code != "" && p.Name != "" && !p.Price.IsNegative() && p.Stock >= 0
}

// DefaultCatalog возвращает каталог, которым заполняется пустое хранилище при первом запуске.
func DefaultCatalog() Catalog {
	return Catalog{
		*NewProduct("P001", "Shampoo", decimal.NewFromInt(50), 20),
		*NewProduct("P002", "Soap", decimal.NewFromInt(25), 30),
		*NewProduct("P003", "Toothpaste", decimal.NewFromInt(40), 15),
	}
}
