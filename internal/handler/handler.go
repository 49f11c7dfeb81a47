// Package handler содержит HTTP-обработчики сервиса синхронизации CRM.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/crmsync-system/internal/model"
	"github.com/mmeshcher/crmsync-system/internal/normalize"
	"github.com/mmeshcher/crmsync-system/internal/report"
)

// Processor определяет контракт обработки покупки, используемый вебхуком.
type Processor interface {
	Process(ctx context.Context, event model.PurchaseEvent) (*model.ProcessOutcome, error)
}

// Ledger определяет контракт журнала покупок, используемый обработчиками.
type Ledger interface {
	Append(rec model.LedgerRecord) error
	RowCount() (int, error)
	Records() ([]model.LedgerRecord, error)
}

// Handler реализует HTTP-обработчики сервиса синхронизации CRM.
type Handler struct {
	processor    Processor
	ledger       Ledger
	logger       *zap.Logger
	defaultPlan  string
	revenueShare float64
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(p Processor, l Ledger, logger *zap.Logger, defaultPlan string, revenueShare float64) *Handler {
	return &Handler{
		processor:    p,
		ledger:       l,
		logger:       logger,
		defaultPlan:  defaultPlan,
		revenueShare: revenueShare,
	}
}

type webhookResponse struct {
	Status      string `json:"status"`
	UserAction  string `json:"user_action,omitempty"`
	RowsWritten int    `json:"rows_written,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Webhook принимает событие покупки от CRM: нормализует его, выполняет
// upsert пользователя и дописывает строку в журнал.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
		return
	}

	event, err := normalize.Decode(body, h.defaultPlan)
	if err != nil {
		if errors.Is(err, normalize.ErrIgnoredAction) {
			h.writeJSON(w, http.StatusOK, webhookResponse{Status: "ignored"})
			return
		}
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	// Проверка до любых сетевых и дисковых операций: без email
	// не должно быть ни одного побочного эффекта.
	if event.Email == "" {
		h.writeError(w, http.StatusBadRequest, errors.New("email is required"))
		return
	}

	// Начатая обработка доводится до конца: обрыв соединения клиентом
	// не откатывает уже выполненные эффекты.
	ctx := context.WithoutCancel(r.Context())

	outcome, err := h.processor.Process(ctx, event)
	if err != nil {
		h.logger.Error("process purchase error", zap.Error(err), zap.String("email", event.Email))
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	rec := model.LedgerRecord{
		Date:         outcome.Event.Date,
		Email:        outcome.Event.Email,
		PurchaseType: outcome.Event.PurchaseType,
		Amount:       outcome.Event.Amount,
	}
	if err := h.ledger.Append(rec); err != nil {
		// Upsert на платформе уже зафиксирован: отказ журнала отдаётся
		// как частичный сбой с указанием выполненного действия.
		h.logger.Error("ledger append error", zap.Error(err), zap.String("email", event.Email), zap.String("action", string(outcome.Action)))
		h.writeError(w, http.StatusInternalServerError,
			fmt.Errorf("ledger append failed after user %s: %w", outcome.Action, err))
		return
	}

	count, err := h.ledger.RowCount()
	if err != nil {
		h.logger.Error("ledger count error", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, http.StatusOK, webhookResponse{
		Status:      "ok",
		UserAction:  string(outcome.Action),
		RowsWritten: count,
	})
}

// ReportSummary возвращает сводку выручки по текущему журналу.
func (h *Handler) ReportSummary(w http.ResponseWriter, r *http.Request) {
	records, err := h.ledger.Records()
	if err != nil {
		h.logger.Error("ledger read error", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, http.StatusOK, report.Summarize(records, h.revenueShare))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}
