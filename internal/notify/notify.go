package notify

import (
	"context"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/config"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const defaultTimeout = 5 * time.Second

// RunSummary is published once a run has committed.
type RunSummary struct {
	CalcDate      string                   `json:"fecha"`
	Alerts        map[domain.AlertType]int `json:"alertas"`
	TotalAlerts   int                      `json:"total_alertas"`
	Transfers     int                      `json:"traslados"`
	Purchases     int                      `json:"compras"`
	PurchaseValue decimal.Decimal          `json:"valor_compras"`
}

// Critical reports whether the run produced stock-out or critical alerts.
func (s RunSummary) Critical() bool {
	return s.Alerts[domain.AlertStockCritical]+s.Alerts[domain.AlertOutOfStock] > 0
}

// Notifier delivers run summaries. Delivery is best effort: callers log the
// error and carry on.
type Notifier interface {
	Notify(ctx context.Context, summary RunSummary) error
}

type noopNotifier struct{}

func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

func (noopNotifier) Notify(ctx context.Context, summary RunSummary) error {
	log.Debug().Str("fecha", summary.CalcDate).Msg("notifications disabled; run summary dropped")
	return nil
}

// multiNotifier fans a summary out to every configured channel.
type multiNotifier []Notifier

func (m multiNotifier) Notify(ctx context.Context, summary RunSummary) error {
	var firstErr error
	for _, n := range m {
		if err := n.Notify(ctx, summary); err != nil {
			log.Warn().Err(err).Str("fecha", summary.CalcDate).Msg("notification channel failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// New builds the notifiers enabled in cfg. publisher may be nil when no SNS
// topic is configured.
func New(cfg config.NotifyConfig, publisher SNSPublisher) Notifier {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var out multiNotifier
	if cfg.SNSTopicARN != "" && publisher != nil {
		out = append(out, NewSNSNotifier(publisher, cfg.SNSTopicARN))
	}
	if cfg.WebhookURL != "" {
		out = append(out, NewWebhookNotifier(cfg.WebhookURL, timeout))
	}

	switch len(out) {
	case 0:
		return NewNoopNotifier()
	case 1:
		return out[0]
	default:
		return out
	}
}
