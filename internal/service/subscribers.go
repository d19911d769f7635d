package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bruhsty/bruhsty/internal/storage"
	"github.com/bruhsty/bruhsty/internal/subscription"
	"github.com/bruhsty/bruhsty/persistence"
)

const (
	useCaseSyncSubscribers = "sync_subscribers"
	useCaseExpireOverdue   = "expire_overdue"
	useCaseListSubscribers = "list_subscribers"
	useCaseGetSubscriber   = "get_subscriber"

	// SyncPageSize is the number of profiles fetched from a SubscriberSource per call.
	SyncPageSize = 30
)

// SubscriptionLevel is a paid level offered on the subscription platform.
type SubscriptionLevel struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	IsArchived bool   `json:"is_archived"`
}

// SubscriberProfile is a subscriber as the subscription platform reports it.
type SubscriberProfile struct {
	ID          int64              `json:"id"`
	Email       string             `json:"email"`
	Name        string             `json:"name"`
	Level       *SubscriptionLevel `json:"level"`
	NextPayTime *time.Time         `json:"next_pay_time"`
	Banned      bool               `json:"banned"`
}

// Subscribed reports whether the profile pays for a level.
func (p SubscriberProfile) Subscribed() bool {
	return p.Level != nil && !p.Banned
}

func (p SubscriberProfile) levelID() *int64 {
	if p.Level == nil {
		return nil
	}

	id := p.Level.ID

	return &id
}

// SubscriberSource pages through the subscribers of the platform.
type SubscriberSource interface {
	ListSubscribers(ctx context.Context, limit, offset uint) ([]SubscriberProfile, error)
}

// SyncReport counts what SyncSubscribers changed.
type SyncReport struct {
	Fetched    int
	Registered int
	Renewed    int
	Expired    int
}

// SyncSubscribers mirrors every profile of source. Each page is stored in its own transaction.
func (s *Service) SyncSubscribers(ctx context.Context, source SubscriberSource) (SyncReport, error) {
	var report SyncReport

	for offset := uint(0); ; offset += SyncPageSize {
		profiles, err := source.ListSubscribers(ctx, SyncPageSize, offset)
		if err != nil {
			return report, fmt.Errorf("fetching subscribers failed: %w", err)
		}

		if len(profiles) == 0 {
			return report, nil
		}

		var page SyncReport
		err = s.run(ctx, useCaseSyncSubscribers, func(ctx context.Context, repos storage.Repositories) error {
			page = SyncReport{Fetched: len(profiles)}

			for _, profile := range profiles {
				if err := s.syncProfile(ctx, repos.Subscribers, profile, &page); err != nil {
					return err
				}
			}

			return nil
		})
		if err != nil {
			return report, err
		}

		report.Fetched += page.Fetched
		report.Registered += page.Registered
		report.Renewed += page.Renewed
		report.Expired += page.Expired

		if len(profiles) < SyncPageSize {
			return report, nil
		}
	}
}

func (s *Service) syncProfile(ctx context.Context, subscribers storage.SubscriberRepository, profile SubscriberProfile, report *SyncReport) error {
	now := s.clock()

	nextPayTime := now
	if profile.NextPayTime != nil {
		nextPayTime = *profile.NextPayTime
	}

	// Matched against the normalized addresses of users.
	email := strings.ToLower(strings.TrimSpace(profile.Email))

	subscriber, err := subscribers.Get(ctx, profile.ID)
	if errors.Is(err, persistence.ErrNotFound) {
		report.Registered++

		return subscribers.Add(ctx, subscription.Register(profile.ID, email, profile.levelID(), nextPayTime, profile.Subscribed(), now))
	}

	if err != nil {
		return err
	}

	subscriber.ChangeEmail(email)

	pending := subscriber.PendingEvents()
	if profile.Subscribed() {
		subscriber.Renew(profile.levelID(), nextPayTime, now)
		if subscriber.PendingEvents() > pending {
			report.Renewed++
		}
	} else {
		subscriber.Expire(now)
		if subscriber.PendingEvents() > pending {
			report.Expired++
		}
	}

	return subscribers.Save(ctx, subscriber)
}

// ExpireOverdue ends every active subscription whose payment was due before now.
// It updates rows in bulk and records no events.
func (s *Service) ExpireOverdue(ctx context.Context) (int64, error) {
	now := s.clock()
	var expired int64

	err := s.run(ctx, useCaseExpireOverdue, func(ctx context.Context, repos storage.Repositories) error {
		affected, err := repos.Subscribers.Update(ctx,
			subscription.NextPayTime.Lt(now).And(subscription.Subscribed.Eq(true)),
			persistence.Values{subscription.FieldSubscribed: false},
		)
		if errors.Is(err, persistence.ErrNoRowsAffected) {
			return nil
		}

		expired = affected

		return err
	})
	if err != nil {
		return 0, err
	}

	return expired, nil
}

// ListSubscribers returns a page of active subscribers, of one level when levelID is not nil.
func (s *Service) ListSubscribers(ctx context.Context, levelID *int64, limit, offset uint) ([]*subscription.Subscriber, error) {
	spec := subscription.Subscribed.Eq(true)
	if levelID != nil {
		spec = spec.And(subscription.LevelID.Eq(*levelID))
	}

	var result []*subscription.Subscriber

	err := s.run(ctx, useCaseListSubscribers, func(ctx context.Context, repos storage.Repositories) error {
		found, err := repos.Subscribers.Find(ctx, spec, persistence.WithLimit(limit), persistence.WithOffset(offset))
		result = found

		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetSubscriber returns the subscriber with id.
func (s *Service) GetSubscriber(ctx context.Context, id int64) (*subscription.Subscriber, error) {
	var result *subscription.Subscriber

	err := s.run(ctx, useCaseGetSubscriber, func(ctx context.Context, repos storage.Repositories) error {
		found, err := repos.Subscribers.Get(ctx, id)
		if errors.Is(err, persistence.ErrNotFound) {
			return fmt.Errorf("%w: %d", ErrSubscriberNotFound, id)
		}

		result = found

		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
