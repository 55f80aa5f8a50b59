package domain

import "github.com/shopspring/decimal"

// CartLine описывает строку корзины.
// Цена фиксируется в момент первого добавления товара.
type CartLine struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func NewCartLine(p *Product, quantity int) *CartLine {
	line := &CartLine{
		Code:     p.Code,
		Name:     p.Name,
		Price:    p.Price,
		Quantity: quantity,
	}
	line.recompute()

	return line
}

func (l *CartLine) recompute() {
	l.Subtotal = l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart содержит не более одной строки на код товара.
type Cart []CartLine

// Line возвращает строку корзины по коду товара или nil.
func (c Cart) Line(code string) *CartLine {
	for i := range c {
		if c[i].Code == code {
			return &c[i]
		}
	}

	return nil
}

// Merge добавляет quantity единиц товара: увеличивает существующую строку
// (по сохраненной в ней цене) или создает новую по текущей цене товара.
func (c *Cart) Merge(p *Product, quantity int) CartLine {
	if line := c.Line(p.Code); line != nil {
		line.Quantity += quantity
		line.recompute()
		return *line
	}

	line := NewCartLine(p, quantity)
	*c = append(*c, *line)
	return *line
}

// Total суммирует подытоги всех строк.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c {
		total = total.Add(line.Subtotal)
	}

	return total
}

// Reserved возвращает количество единиц товара, удерживаемых корзиной.
func (c Cart) Reserved(code string) int {
	if line := c.Line(code); line != nil {
		return line.Quantity
	}

	return 0
}

// Clone возвращает независимую копию корзины.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}
