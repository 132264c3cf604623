package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"storefront-api/internal/logger"
)

// LogSink writes confirmations to the log. It stands in when no broker is configured.
type LogSink struct {
	logger logrus.FieldLogger
}

func NewLogSink(log logrus.FieldLogger) *LogSink {
	return &LogSink{logger: logger.OrDiscard(log).WithField("sink", "log")}
}

func (s *LogSink) Send(_ context.Context, c Confirmation) error {
	s.logger.WithFields(logrus.Fields{
		"order_id": c.OrderID,
		"email":    c.Email,
		"items":    len(c.Items),
		"total":    c.TotalPrice.StringFixed(2),
	}).Info("order confirmation")
	return nil
}
