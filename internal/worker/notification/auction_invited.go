package notification

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/buyerdesk/internal/config"
	"github.com/Additional-Code/buyerdesk/internal/messaging"
	notify "github.com/Additional-Code/buyerdesk/internal/notification"
	"github.com/Additional-Code/buyerdesk/internal/worker"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/buyerdesk/worker/notification")

// Module registers notification worker handlers.
var Module = fx.Module("worker_notification",
	fx.Provide(
		fx.Annotate(
			NewAuctionInvitedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewAuctionInvitedHandler delivers queued auction invitations by mail.
// Delivery failures are logged and the message is acknowledged; a broken
// mail relay must not stall the topic.
func NewAuctionInvitedHandler(sender *notify.Sender, logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.notifications.auction_invited", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
			attribute.Int64("messaging.offset", msg.Offset),
		))
		defer span.End()

		var event notify.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode auction invitation", zap.Error(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return nil
		}
		inv := event.Invitation
		span.SetAttributes(attribute.String("auction.id", inv.AuctionID), attribute.Int("mail.recipients", len(inv.Recipients)))

		if err := sender.Deliver(ctx, inv); err != nil {
			logger.Error("auction invitation not delivered",
				zap.String("auction_id", inv.AuctionID),
				zap.Int("recipients", len(inv.Recipients)),
				zap.Error(err),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, "delivery failed")
			return nil
		}

		logger.Info("auction invitation sent",
			zap.String("auction_id", inv.AuctionID),
			zap.Int("recipients", len(inv.Recipients)),
		)
		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Type:    notify.EventAuctionInvited,
		Handler: handler,
	}
}
