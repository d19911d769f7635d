package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bruhsty/bruhsty/internal/subscription"
	"github.com/bruhsty/bruhsty/internal/user"
	"github.com/bruhsty/bruhsty/persistence"
	"github.com/bruhsty/bruhsty/persistence/messagebus"
)

const (
	verificationSubject = "Your verification code"
	logMsgEmailVerified = "service: email verified"
	logMsgSubscription  = "service: subscription changed"
	logMsgMailSent      = "service: mail sent"
	logAttrUserID       = "user_id"
	logAttrEmail        = "email"
	logAttrSubscriberID = "subscriber_id"
	logAttrEventType    = "event_type"
	logAttrSubject      = "subject"
	logAttrBody         = "body"
)

// Mailer delivers email messages.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// LogMailer logs messages instead of delivering them.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer. A nil logger uses slog.Default.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogMailer{logger: logger}
}

// SendEmail logs the recipient and subject at info level. The body, which may carry a
// verification code, is only logged at debug level.
func (m *LogMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	if m.logger.Enabled(ctx, slog.LevelDebug) {
		m.logger.DebugContext(ctx, logMsgMailSent, logAttrEmail, to, logAttrSubject, subject, logAttrBody, body)
		return nil
	}

	m.logger.InfoContext(ctx, logMsgMailSent, logAttrEmail, to, logAttrSubject, subject)

	return nil
}

// EventHandlers returns the handlers of the domain events by event type.
func EventHandlers(mailer Mailer, logger *slog.Logger) map[string][]messagebus.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	logSubscription := func(ctx context.Context, event persistence.DomainEvent) error {
		var subscriberID int64

		switch e := event.(type) {
		case subscription.SubscriberRegistered:
			subscriberID = e.SubscriberID
		case subscription.SubscriptionRenewed:
			subscriberID = e.SubscriberID
		case subscription.SubscriptionExpired:
			subscriberID = e.SubscriberID
		}

		logger.InfoContext(ctx, logMsgSubscription, logAttrEventType, event.IsEventType(), logAttrSubscriberID, subscriberID)

		return nil
	}

	return map[string][]messagebus.Handler{
		user.VerificationCodeIssuedEventType:       {sendVerificationCode(mailer)},
		user.EmailVerifiedEventType:                {logEmailVerified(logger)},
		subscription.SubscriberRegisteredEventType: {logSubscription},
		subscription.SubscriptionRenewedEventType:  {logSubscription},
		subscription.SubscriptionExpiredEventType:  {logSubscription},
	}
}

// NewBus creates a message bus dispatching to EventHandlers.
func NewBus(mailer Mailer, logger *slog.Logger, options ...persistence.Option) (*messagebus.Bus, error) {
	return messagebus.New(EventHandlers(mailer, logger), options...)
}

func sendVerificationCode(mailer Mailer) messagebus.Handler {
	return func(ctx context.Context, event persistence.DomainEvent) error {
		issued, ok := event.(user.VerificationCodeIssued)
		if !ok {
			return fmt.Errorf("unexpected event %T", event)
		}

		body := fmt.Sprintf("Your verification code is %s. It is valid until %s.",
			issued.Code, issued.ValidUntil.UTC().Format(time.RFC1123))

		return mailer.SendEmail(ctx, issued.Email, verificationSubject, body)
	}
}

func logEmailVerified(logger *slog.Logger) messagebus.Handler {
	return func(ctx context.Context, event persistence.DomainEvent) error {
		verified, ok := event.(user.EmailVerified)
		if !ok {
			return fmt.Errorf("unexpected event %T", event)
		}

		logger.InfoContext(ctx, logMsgEmailVerified, logAttrUserID, verified.UserID, logAttrEmail, verified.Email)

		return nil
	}
}
