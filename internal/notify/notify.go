// Package notify реализует побочный канал уведомлений о покупках.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mmeshcher/crmsync-system/internal/model"
)

// Notifier описывает контракт побочного канала уведомлений.
// Отказ уведомления не должен влиять на результат обработки покупки.
type Notifier interface {
	PurchaseProcessed(ctx context.Context, event model.PurchaseEvent, existing bool) error
}

// EmailNotifier имитирует отправку приветственного письма через лог.
// Реальный почтовый провайдер подключается вместо логгера.
type EmailNotifier struct {
	logger *zap.Logger
}

// NewEmailNotifier создаёт уведомитель, пишущий письма в лог.
func NewEmailNotifier(logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{logger: logger}
}

// PurchaseProcessed отправляет приветственное письмо о покупке.
func (n *EmailNotifier) PurchaseProcessed(ctx context.Context, event model.PurchaseEvent, existing bool) error {
	subject := "Welcome to MyPlatform!"
	body := fmt.Sprintf("Hi %s, thanks for your %s purchase! Your account is now created and ready to use.",
		event.FirstName, event.PurchaseType)
	if existing {
		subject = "Welcome back!"
		body = fmt.Sprintf("Hi %s, thanks for your %s purchase! Your account is now updated and ready to use.",
			event.FirstName, event.PurchaseType)
	}

	n.logger.Info("email sent",
		zap.String("to", event.Email),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
