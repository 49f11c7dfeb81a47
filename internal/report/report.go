// Package report строит сводку выручки по журналу покупок.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/crmsync-system/internal/model"
)

// Summary содержит агрегированную сводку продаж для отчётности.
type Summary struct {
	TotalSales        int                        `json:"total_sales"`
	TotalRevenue      decimal.Decimal            `json:"total_revenue"`
	RevenueShare      decimal.Decimal            `json:"revenue_share"`
	SalesPerProduct   map[string]int             `json:"sales_per_product"`
	RevenuePerProduct map[string]decimal.Decimal `json:"revenue_per_product"`
}

// Summarize агрегирует строки журнала: общее число продаж, выручку,
// разбивку по продуктам и долю выручки share.
func Summarize(records []model.LedgerRecord, share float64) Summary {
	total := decimal.Zero
	salesPerProduct := make(map[string]int)
	revenuePerProduct := make(map[string]decimal.Decimal)

	for _, rec := range records {
		product := rec.PurchaseType
		if product == "" {
			product = model.PurchaseTypeUnknown
		}

		total = total.Add(rec.Amount)
		salesPerProduct[product]++
		revenuePerProduct[product] = revenuePerProduct[product].Add(rec.Amount)
	}

	return Summary{
		TotalSales:        len(records),
		TotalRevenue:      total,
		RevenueShare:      total.Mul(decimal.NewFromFloat(share)),
		SalesPerProduct:   salesPerProduct,
		RevenuePerProduct: revenuePerProduct,
	}
}
