package subscription

import (
	"time"

	"github.com/bruhsty/bruhsty/persistence"
)

// Event type identifiers.
const (
	SubscriberRegisteredEventType = "SubscriberRegistered"
	SubscriptionRenewedEventType  = "SubscriptionRenewed"
	SubscriptionExpiredEventType  = "SubscriptionExpired"
)

// SubscriberRegistered represents when a subscriber was stored for the first time.
type SubscriberRegistered struct {
	SubscriberID int64
	Email        string
	LevelID      *int64
	Subscribed   bool
	OccurredAt   time.Time
}

// BuildSubscriberRegistered creates a new SubscriberRegistered event.
func BuildSubscriberRegistered(subscriberID int64, email string, levelID *int64, subscribed bool, occurredAt time.Time) SubscriberRegistered {
	return SubscriberRegistered{
		SubscriberID: subscriberID,
		Email:        email,
		LevelID:      levelID,
		Subscribed:   subscribed,
		OccurredAt:   persistence.ToOccurredAt(occurredAt),
	}
}

func (e SubscriberRegistered) IsEventType() string      { return SubscriberRegisteredEventType }
func (e SubscriberRegistered) HasOccurredAt() time.Time { return e.OccurredAt }

// SubscriptionRenewed represents when a subscription was paid for or changed level.
type SubscriptionRenewed struct {
	SubscriberID int64
	LevelID      *int64
	NextPayTime  time.Time
	OccurredAt   time.Time
}

// BuildSubscriptionRenewed creates a new SubscriptionRenewed event.
func BuildSubscriptionRenewed(subscriberID int64, levelID *int64, nextPayTime, occurredAt time.Time) SubscriptionRenewed {
	return SubscriptionRenewed{
		SubscriberID: subscriberID,
		LevelID:      levelID,
		NextPayTime:  nextPayTime,
		OccurredAt:   persistence.ToOccurredAt(occurredAt),
	}
}

func (e SubscriptionRenewed) IsEventType() string      { return SubscriptionRenewedEventType }
func (e SubscriptionRenewed) HasOccurredAt() time.Time { return e.OccurredAt }

// SubscriptionExpired represents when an active subscription ended.
type SubscriptionExpired struct {
	SubscriberID int64
	LevelID      *int64
	OccurredAt   time.Time
}

// BuildSubscriptionExpired creates a new SubscriptionExpired event.
func BuildSubscriptionExpired(subscriberID int64, levelID *int64, occurredAt time.Time) SubscriptionExpired {
	return SubscriptionExpired{
		SubscriberID: subscriberID,
		LevelID:      levelID,
		OccurredAt:   persistence.ToOccurredAt(occurredAt),
	}
}

func (e SubscriptionExpired) IsEventType() string      { return SubscriptionExpiredEventType }
func (e SubscriptionExpired) HasOccurredAt() time.Time { return e.OccurredAt }
