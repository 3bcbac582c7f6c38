package notification

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/buyerdesk/internal/config"
	"github.com/Additional-Code/buyerdesk/internal/messaging"
)

// EventAuctionInvited is the message type published for new auctions.
const EventAuctionInvited = "auction.invited"

const deliveryTimeout = 30 * time.Second

// Invitation is everything needed to invite suppliers to an auction.
type Invitation struct {
	AuctionID        string   `json:"auction_id"`
	AuctionName      string   `json:"auction_name"`
	CompanyBuyerName string   `json:"company_buyer_name"`
	Link             string   `json:"link"`
	Recipients       []string `json:"recipients"`
}

// Event is the bus envelope around an Invitation.
type Event struct {
	Type       string     `json:"type"`
	Invitation Invitation `json:"invitation"`
}

// Notifier dispatches notifications without blocking the caller on delivery.
type Notifier interface {
	AuctionCreated(ctx context.Context, inv Invitation)
}

// Sender renders and delivers invitations synchronously.
type Sender struct {
	mailer Mailer
	from   string
}

// NewSender builds a Sender over mailer.
func NewSender(mailer Mailer, cfg config.Config) *Sender {
	return &Sender{mailer: mailer, from: cfg.Mail.From}
}

// Deliver sends one message to every recipient in blind copy.
func (s *Sender) Deliver(ctx context.Context, inv Invitation) error {
	body, err := renderInvitation(inv)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, Message{
		From:    s.from,
		Bcc:     inv.Recipients,
		Subject: invitationSubject,
		HTML:    body,
	})
}

// Params defines dependencies for constructing the dispatcher.
type Params struct {
	fx.In

	Sender    *Sender
	Publisher messaging.Client
	Config    config.Config
	Logger    *zap.Logger
}

// Dispatcher queues invitations on the bus when messaging is enabled and
// otherwise delivers them from a background goroutine.
type Dispatcher struct {
	sender    *Sender
	publisher messaging.Client
	queue     bool
	logger    *zap.Logger

	mu      sync.Mutex
	drained bool
	wg      sync.WaitGroup
}

// Module wires the mailer, sender and dispatcher.
var Module = fx.Options(
	fx.Provide(NewMailer, NewSender, NewDispatcher),
	fx.Provide(func(d *Dispatcher) Notifier { return d }),
	fx.Invoke(func(lc fx.Lifecycle, d *Dispatcher) {
		lc.Append(fx.Hook{OnStop: d.Drain})
	}),
)

// NewDispatcher builds the dispatcher.
func NewDispatcher(p Params) *Dispatcher {
	return &Dispatcher{
		sender:    p.Sender,
		publisher: p.Publisher,
		queue:     p.Config.Messaging.Enabled && p.Publisher != nil,
		logger:    p.Logger,
	}
}

// AuctionCreated never returns an error; failures are logged.
func (d *Dispatcher) AuctionCreated(ctx context.Context, inv Invitation) {
	if len(inv.Recipients) == 0 {
		return
	}
	if d.queue {
		err := d.publish(ctx, inv)
		if err == nil {
			return
		}
		d.logger.Warn("queue invitation failed; sending directly", zap.String("auction_id", inv.AuctionID), zap.Error(err))
	}

	if !d.track() {
		d.logger.Error("auction invitation dropped; dispatcher is shutting down",
			zap.String("auction_id", inv.AuctionID),
			zap.Int("recipients", len(inv.Recipients)),
		)
		return
	}
	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
		defer cancel()
		if err := d.sender.Deliver(sendCtx, inv); err != nil {
			d.logger.Error("auction invitation not delivered",
				zap.String("auction_id", inv.AuctionID),
				zap.Int("recipients", len(inv.Recipients)),
				zap.Error(err),
			)
			return
		}
		d.logger.Info("auction invitation sent",
			zap.String("auction_id", inv.AuctionID),
			zap.Int("recipients", len(inv.Recipients)),
		)
	}()
}

func (d *Dispatcher) publish(ctx context.Context, inv Invitation) error {
	payload, err := json.Marshal(Event{Type: EventAuctionInvited, Invitation: inv})
	if err != nil {
		return err
	}
	return d.publisher.Publish(ctx, messaging.Message{
		Key:     []byte("auction-" + inv.AuctionID),
		Value:   payload,
		Headers: map[string]string{messaging.HeaderType: EventAuctionInvited},
	})
}

// track registers one background delivery unless Drain has started.
func (d *Dispatcher) track() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.drained {
		return false
	}
	d.wg.Add(1)
	return true
}

// Drain stops accepting background deliveries and waits for in-flight ones
// or until ctx ends.
func (d *Dispatcher) Drain(ctx context.Context) error {
	d.mu.Lock()
	d.drained = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
