package render

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/DRSN-tech/pos-register/internal/domain"
)

// FormatText строит текстовое представление кассы: таблицу товаров, таблицу корзины и сводку.
// Результат зависит только от view.
func FormatText(view *domain.View) string {
	var buf bytes.Buffer

	if view.Message != "" {
		fmt.Fprintf(&buf, "%s\n", view.Message)
	}
	fmt.Fprintf(&buf, "Total: %s\n\n", money(view.Total))

	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tPRICE\tSTOCK")
	for _, p := range view.Products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", p.Code, p.Name, money(p.Price), p.Stock)
	}
	tw.Flush()

	buf.WriteString("\n")

	tw = tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tQTY\tPRICE\tSUBTOTAL")
	if len(view.Cart) == 0 {
		fmt.Fprintln(tw, "No items yet")
	}
	for _, line := range view.Cart {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", line.Code, line.Name, line.Quantity, money(line.Price), money(line.Subtotal))
	}
	tw.Flush()

	fmt.Fprintf(&buf, "\nTotal: %s\nChange: %s\n", money(view.Total), money(view.Change))

	return buf.String()
}
