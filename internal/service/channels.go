package service

import (
	"context"
	"fmt"

	"github.com/bruhsty/bruhsty/internal/storage"
	"github.com/bruhsty/bruhsty/internal/subscription"
	"github.com/bruhsty/bruhsty/internal/user"
)

const (
	useCaseListChannels     = "list_channels"
	useCaseCanAccessChannel = "can_access_channel"
)

// Channel is a Telegram channel open to the subscribers of one level.
type Channel struct {
	ID         int64  `json:"id"`
	InviteLink string `json:"invite_link"`
	LevelID    int64  `json:"level_id"`
}

// ListChannels returns the configured channels the user reaches through the active
// subscriptions of its verified email addresses, in configuration order.
func (s *Service) ListChannels(ctx context.Context, telegramID int64) ([]Channel, error) {
	var result []Channel

	err := s.run(ctx, useCaseListChannels, func(ctx context.Context, repos storage.Repositories) error {
		u, err := getUser(ctx, repos.Users, telegramID)
		if err != nil {
			return err
		}

		levels, err := subscribedLevels(ctx, repos.Subscribers, u)
		if err != nil {
			return err
		}

		result = make([]Channel, 0)
		for _, channel := range s.channels {
			if _, ok := levels[channel.LevelID]; ok {
				result = append(result, channel)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// CanAccessChannel reports whether the user may join the channel with channelID.
// An unknown user has no access; an unknown channel fails with ErrChannelNotFound.
func (s *Service) CanAccessChannel(ctx context.Context, telegramID, channelID int64) (bool, error) {
	channel, ok := s.channel(channelID)
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrChannelNotFound, channelID)
	}

	var allowed bool

	err := s.run(ctx, useCaseCanAccessChannel, func(ctx context.Context, repos storage.Repositories) error {
		u, err := repos.Users.Find(ctx, user.ID.Eq(telegramID))
		if err != nil || len(u) == 0 {
			return err
		}

		levels, err := subscribedLevels(ctx, repos.Subscribers, u[0])
		if err != nil {
			return err
		}

		_, allowed = levels[channel.LevelID]

		return nil
	})
	if err != nil {
		return false, err
	}

	return allowed, nil
}

func (s *Service) channel(id int64) (Channel, bool) {
	for _, channel := range s.channels {
		if channel.ID == id {
			return channel, true
		}
	}

	return Channel{}, false
}

// subscribedLevels collects the levels of the active subscribers sharing a verified address with u.
func subscribedLevels(ctx context.Context, subscribers storage.SubscriberRepository, u *user.User) (map[int64]struct{}, error) {
	levels := make(map[int64]struct{})

	for _, email := range u.Emails() {
		if !email.Verified() {
			continue
		}

		found, err := subscribers.Find(ctx, subscription.Email.Eq(email.Address).And(subscription.Subscribed.Eq(true)))
		if err != nil {
			return nil, err
		}

		for _, subscriber := range found {
			if levelID := subscriber.LevelID(); levelID != nil {
				levels[*levelID] = struct{}{}
			}
		}
	}

	return levels, nil
}
