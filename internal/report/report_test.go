package report

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/crmsync-system/internal/model"
)

func record(product, amount string) model.LedgerRecord {
	return model.LedgerRecord{
		Email:        "user@example.com",
		PurchaseType: product,
		Amount:       decimal.RequireFromString(amount),
	}
}

func TestSummarize(t *testing.T) {
	records := []model.LedgerRecord{
		record("CRM Pro", "100"),
		record("CRM Pro", "50.5"),
		record("CRM Lite", "10"),
		record("", "5"),
	}

	s := Summarize(records, 0.10)

	if s.TotalSales != 4 {
		t.Fatalf("total sales = %d, want 4", s.TotalSales)
	}
	if s.TotalRevenue.String() != "165.5" {
		t.Fatalf("total revenue = %s, want 165.5", s.TotalRevenue)
	}
	if s.RevenueShare.String() != "16.55" {
		t.Fatalf("revenue share = %s, want 16.55", s.RevenueShare)
	}

	if s.SalesPerProduct["CRM Pro"] != 2 || s.SalesPerProduct["CRM Lite"] != 1 {
		t.Fatalf("unexpected sales per product: %+v", s.SalesPerProduct)
	}
	if s.SalesPerProduct[model.PurchaseTypeUnknown] != 1 {
		t.Fatalf("empty product must count as %s: %+v", model.PurchaseTypeUnknown, s.SalesPerProduct)
	}
	if s.RevenuePerProduct["CRM Pro"].String() != "150.5" {
		t.Fatalf("CRM Pro revenue = %s, want 150.5", s.RevenuePerProduct["CRM Pro"])
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, 0.10)

	if s.TotalSales != 0 {
		t.Fatalf("total sales = %d, want 0", s.TotalSales)
	}
	if !s.TotalRevenue.IsZero() || !s.RevenueShare.IsZero() {
		t.Fatalf("revenue must be zero: %+v", s)
	}
}
