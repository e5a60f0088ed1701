package recipe

import (
	"fmt"
	"strings"

	"foodgram/internal/domain"
)

const (
	shoppingListHeader   = "Shopping list"
	ShoppingListFilename = "shopping_list.txt"
)

// FormatShoppingList renders one "* name - amount unit" line per item.
func FormatShoppingList(items []domain.ShoppingItem) string {
	var b strings.Builder
	b.WriteString(shoppingListHeader)
	b.WriteString("\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "* %s - %d %s\n", item.Name, item.Amount, item.MeasurementUnit)
	}
	return b.String()
}
