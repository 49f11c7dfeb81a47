// Package normalize приводит разнородные события CRM к каноническому виду.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/crmsync-system/internal/model"
)

// ErrIgnoredAction возвращается для событий с действием, отличным от покупки.
var (
	ErrIgnoredAction = errors.New("ignored action")
	// ErrUnknownShape возвращается, если JSON корректен, но не содержит
	// ни одной распознаваемой формы события покупки.
	ErrUnknownShape = errors.New("unknown event shape")
)

const actionBuyProduct = "buy_product"

// envelope покрывает все поддерживаемые формы входящего события.
// Новая форма добавляется ещё одним полем и ещё одной функцией маппинга.
type envelope struct {
	Purchase      *legacyPurchase `json:"purchase"`
	Action        string          `json:"action"`
	ActionDetails *actionDetails  `json:"action_details"`
}

type legacyPurchase struct {
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Email       string          `json:"email"`
	ProductName string          `json:"product_name"`
	Plan        string          `json:"plan"`
	Amount      json.RawMessage `json:"amount"`
	Date        json.RawMessage `json:"date"`
}

type actionDetails struct {
	Transaction *transactionDetails `json:"transaction_details"`
}

type transactionDetails struct {
	BuyerFirstName string          `json:"buyer_first_name"`
	BuyerLastName  string          `json:"buyer_last_name"`
	BuyerEmail     string          `json:"buyer_email"`
	ProductName    string          `json:"product_name"`
	Plan           string          `json:"plan"`
	BaseAmount     json.RawMessage `json:"transaction_base_amount"`
	Price          json.RawMessage `json:"price"`
	Date           json.RawMessage `json:"transaction_date"`
}

// Decode разбирает тело вебхука и возвращает нормализованное событие покупки.
// Пустое или некорректное тело возвращает ошибку декодирования; события
// с посторонним действием — ErrIgnoredAction.
func Decode(body []byte, defaultPlan string) (model.PurchaseEvent, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return model.PurchaseEvent{}, fmt.Errorf("decode event: %w", err)
	}

	switch {
	case env.Purchase != nil:
		return fromLegacy(env.Purchase, defaultPlan), nil
	case env.Action != "":
		if env.Action != actionBuyProduct {
			return model.PurchaseEvent{}, ErrIgnoredAction
		}
		if env.ActionDetails == nil || env.ActionDetails.Transaction == nil {
			return model.PurchaseEvent{}, ErrUnknownShape
		}
		return fromTransaction(env.ActionDetails.Transaction, defaultPlan), nil
	default:
		return model.PurchaseEvent{}, ErrUnknownShape
	}
}

func fromLegacy(p *legacyPurchase, defaultPlan string) model.PurchaseEvent {
	return model.PurchaseEvent{
		FirstName:    strings.TrimSpace(p.FirstName),
		LastName:     strings.TrimSpace(p.LastName),
		Email:        strings.TrimSpace(p.Email),
		PurchaseType: orDefault(p.ProductName, model.PurchaseTypeUnknown),
		Plan:         orDefault(p.Plan, defaultPlan),
		Amount:       parseAmount(p.Amount),
		Date:         parseDate(p.Date),
	}
}

func fromTransaction(tx *transactionDetails, defaultPlan string) model.PurchaseEvent {
	amount := tx.BaseAmount
	if len(amount) == 0 {
		amount = tx.Price
	}

	return model.PurchaseEvent{
		FirstName:    strings.TrimSpace(tx.BuyerFirstName),
		LastName:     strings.TrimSpace(tx.BuyerLastName),
		Email:        strings.TrimSpace(tx.BuyerEmail),
		PurchaseType: orDefault(tx.ProductName, model.PurchaseTypeUnknown),
		Plan:         orDefault(tx.Plan, defaultPlan),
		Amount:       parseAmount(amount),
		Date:         parseDate(tx.Date),
	}
}

func orDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}

// parseAmount принимает сумму как JSON-число или строку.
// Всё, что не парсится, деградирует до нуля.
func parseAmount(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return decimal.Zero
		}
		return d
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	}

	return decimal.Zero
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDate принимает дату как строку в нескольких форматах или unix-секунды.
// Непригодное значение возвращает нулевое время: дату проставит обработка.
func parseDate(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
		return time.Time{}
	}

	var unix int64
	if err := json.Unmarshal(raw, &unix); err == nil && unix > 0 {
		return time.Unix(unix, 0).UTC()
	}

	return time.Time{}
}
