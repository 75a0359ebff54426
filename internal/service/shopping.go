package service

import (
	"context"
	"fmt"
	"strings"

	"foodgram/internal/store"
)

const shoppingListHeader = "Shopping list:"

// ShoppingLine is the total amount of one ingredient across the cart.
type ShoppingLine struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int64  `json:"amount"`
}

// BuildShoppingList sums the ingredient lines of every recipe in the
// actor's cart. Lines are keyed by ingredient name and unit, so catalog
// rows sharing both collapse into one line.
func (s *Service) BuildShoppingList(ctx context.Context, actor Actor) ([]ShoppingLine, error) {
	if err := actor.require(); err != nil {
		return nil, err
	}

	rows, err := s.store.Read(ctx).Shopping.Aggregate(actor.UserID)
	if err != nil {
		return nil, err
	}
	return toShoppingLines(rows), nil
}

func toShoppingLines(rows []store.ShoppingRow) []ShoppingLine {
	lines := make([]ShoppingLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, ShoppingLine{Name: row.Name, MeasurementUnit: row.MeasurementUnit, Amount: row.Total})
	}
	return lines
}

// RenderShoppingList formats lines as the downloadable text attachment.
func RenderShoppingList(lines []ShoppingLine) string {
	var b strings.Builder
	b.WriteString(shoppingListHeader)
	for i, line := range lines {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "\n%s - %d %s", line.Name, line.Amount, line.MeasurementUnit)
	}
	return b.String()
}
