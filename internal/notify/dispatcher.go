package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Dispatcher sends messages on a best-effort basis. Failures are logged and never returned.
type Dispatcher struct {
	notifier Notifier
	log      *zap.Logger
	timeout  time.Duration
}

func NewDispatcher(notifier Notifier, log *zap.Logger, timeout time.Duration) *Dispatcher {
	return &Dispatcher{notifier: notifier, log: log, timeout: timeout}
}

func (d *Dispatcher) Deliver(ctx context.Context, messages ...Message) {
	for _, m := range messages {
		d.deliver(ctx, m)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, m Message) {
	sendCtx := context.WithoutCancel(ctx)
	if d.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(sendCtx, d.timeout)
		defer cancel()
	}

	receipt, err := d.notifier.Send(sendCtx, m.To, m.Subject, m.Body)
	if err != nil {
		d.log.Warn("notification failed",
			zap.String("to", m.To),
			zap.String("subject", m.Subject),
			zap.Error(err),
		)
		return
	}

	d.log.Debug("notification sent",
		zap.String("to", m.To),
		zap.String("status", receipt.Status),
		zap.String("message_id", receipt.ProviderMessageID),
	)
}
