// Package model содержит доменные сущности сервиса синхронизации CRM.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseTypeUnknown подставляется, когда CRM не передала название продукта.
const PurchaseTypeUnknown = "Unknown"

// UserAction описывает действие, выполненное над пользователем платформы.
type UserAction string

const (
	ActionCreated UserAction = "created"
	ActionUpdated UserAction = "updated"
)

// PurchaseEvent описывает нормализованное событие покупки из CRM.
// Обязательным является только Email, остальные поля заполняются
// безопасными значениями по умолчанию.
type PurchaseEvent struct {
	FirstName    string
	LastName     string
	Email        string
	PurchaseType string
	Plan         string
	Amount       decimal.Decimal
	Date         time.Time
}

// UserRecord описывает запись пользователя на удалённой платформе.
// Локально живёт только в рамках обработки одного запроса.
type UserRecord struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email"`
	Plan        string `json:"plan,omitempty"`
	Joined      string `json:"joined,omitempty"`
	LastUpdated string `json:"last_updated,omitempty"`
}

// LedgerRecord описывает одну строку журнала покупок.
type LedgerRecord struct {
	Date         time.Time
	Email        string
	PurchaseType string
	Amount       decimal.Decimal
}

// ProcessOutcome описывает результат обработки события покупки.
type ProcessOutcome struct {
	Action UserAction
	User   *UserRecord
	// Event содержит событие после обработки, включая проставленную дату.
	Event PurchaseEvent
}
