// Package subscription contains the subscriber aggregate: a member of the paid-subscription
// platform with the level they pay for and the time their next payment is due.
package subscription

import (
	"time"

	"github.com/bruhsty/bruhsty/persistence"
)

// Logical field names of the subscriber repository.
const (
	FieldID          = "id"
	FieldEmail       = "email"
	FieldNextPayTime = "next_pay_time"
	FieldSubscribed  = "subscribed"
	FieldLevelID     = "level_id"
)

var (
	ID          = persistence.NewField[int64](FieldID)
	Email       = persistence.NewField[string](FieldEmail)
	NextPayTime = persistence.NewField[time.Time](FieldNextPayTime)
	Subscribed  = persistence.NewField[bool](FieldSubscribed)
	LevelID     = persistence.NewField[int64](FieldLevelID)
)

// Subscriber is identified by its id on the subscription platform.
// A nil level means the subscriber follows without a paid level.
type Subscriber struct {
	persistence.Aggregate[int64]
	email       string
	nextPayTime time.Time
	subscribed  bool
	levelID     *int64
}

// Register creates a subscriber seen on the platform for the first time.
func Register(id int64, email string, levelID *int64, nextPayTime time.Time, subscribed bool, now time.Time) *Subscriber {
	s := Restore(id, email, levelID, nextPayTime, subscribed)
	s.PushEvent(BuildSubscriberRegistered(id, email, levelID, subscribed, now))

	return s
}

// Restore rebuilds a stored subscriber. It records no events.
func Restore(id int64, email string, levelID *int64, nextPayTime time.Time, subscribed bool) *Subscriber {
	return &Subscriber{
		Aggregate:   persistence.NewAggregate(id),
		email:       email,
		nextPayTime: nextPayTime.UTC(),
		subscribed:  subscribed,
		levelID:     levelID,
	}
}

func (s *Subscriber) Email() string          { return s.email }
func (s *Subscriber) NextPayTime() time.Time { return s.nextPayTime }
func (s *Subscriber) Subscribed() bool       { return s.subscribed }
func (s *Subscriber) LevelID() *int64        { return s.levelID }

// Overdue reports whether an active subscription was not paid by now.
func (s *Subscriber) Overdue(now time.Time) bool {
	return s.subscribed && s.nextPayTime.Before(now)
}

// Renew activates the subscription on levelID until nextPayTime.
// Renewing with the current state does nothing.
func (s *Subscriber) Renew(levelID *int64, nextPayTime time.Time, now time.Time) {
	nextPayTime = nextPayTime.UTC()

	if s.subscribed && sameLevel(s.levelID, levelID) && s.nextPayTime.Equal(nextPayTime) {
		return
	}

	s.subscribed = true
	s.levelID = levelID
	s.nextPayTime = nextPayTime
	s.PushEvent(BuildSubscriptionRenewed(s.AggregateID(), levelID, nextPayTime, now))
}

// Expire ends an active subscription.
func (s *Subscriber) Expire(now time.Time) {
	if !s.subscribed {
		return
	}

	s.subscribed = false
	s.PushEvent(BuildSubscriptionExpired(s.AggregateID(), s.levelID, now))
}

// ChangeEmail updates the contact address. It records no event.
func (s *Subscriber) ChangeEmail(email string) {
	s.email = email
}

func sameLevel(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return *a == *b
}
