// Package service реализует обработку событий покупки.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/crmsync-system/internal/model"
	"github.com/mmeshcher/crmsync-system/internal/notify"
)

// PlatformClient описывает контракт клиента платформы пользователей.
type PlatformClient interface {
	LookupByEmail(ctx context.Context, email string) (*model.UserRecord, error)
	Create(ctx context.Context, event model.PurchaseEvent) (*model.UserRecord, error)
	Update(ctx context.Context, id string, event model.PurchaseEvent) (*model.UserRecord, error)
}

// Processor выполняет upsert пользователя по событию покупки.
type Processor struct {
	platform PlatformClient
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewProcessor создаёт обработчик покупок с указанным клиентом платформы.
func NewProcessor(platform PlatformClient, notifier notify.Notifier, logger *zap.Logger) *Processor {
	return &Processor{
		platform: platform,
		notifier: notifier,
		logger:   logger,
	}
}

// Process ищет пользователя по email и создаёт либо обновляет его.
// Последовательность lookup-then-act не атомарна: два конкурентных запроса
// с одним email могут завести дубликат — платформа не даёт настоящего upsert.
func (p *Processor) Process(ctx context.Context, event model.PurchaseEvent) (*model.ProcessOutcome, error) {
	if event.Date.IsZero() {
		event.Date = time.Now().UTC()
	}

	existing, err := p.platform.LookupByEmail(ctx, event.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if existing != nil {
		updated, err := p.platform.Update(ctx, existing.ID, event)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}

		p.sendNotification(ctx, event, true)

		return &model.ProcessOutcome{
			Action: model.ActionUpdated,
			User:   updated,
			Event:  event,
		}, nil
	}

	created, err := p.platform.Create(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	p.sendNotification(ctx, event, false)

	return &model.ProcessOutcome{
		Action: model.ActionCreated,
		User:   created,
		Event:  event,
	}, nil
}

// sendNotification запускает побочный канал: его отказ только логируется.
func (p *Processor) sendNotification(ctx context.Context, event model.PurchaseEvent, existing bool) {
	if p.notifier == nil {
		return
	}

	if err := p.notifier.PurchaseProcessed(ctx, event, existing); err != nil {
		p.logger.Warn("notification failed",
			zap.Error(err),
			zap.String("email", event.Email),
			zap.Bool("existing", existing),
		)
	}
}
