package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruhsty/bruhsty/internal/service"
)

var (
	goldChannel   = service.Channel{ID: -1001, InviteLink: "https://t.me/+gold", LevelID: 3}
	silverChannel = service.Channel{ID: -1002, InviteLink: "https://t.me/+silver", LevelID: 2}
	bronzeChannel = service.Channel{ID: -1003, InviteLink: "https://t.me/+bronze", LevelID: 1}
)

func givenChannelFixture(t *testing.T, newUnitOfWork engine) fixture {
	t.Helper()

	f := givenFixture(t, newUnitOfWork, service.WithChannels(goldChannel, silverChannel, bronzeChannel))
	nextPay := startTime.Add(24 * time.Hour)

	gold := paidProfile(1, 3, nextPay)
	gold.Email = "Reader@Example.com"
	silver := paidProfile(2, 2, nextPay)
	silver.Email = "other@example.com"
	bronze := paidProfile(3, 1, nextPay)
	bronze.Email = "reader@example.com"
	bronze.Banned = true

	_, err := f.service.SyncSubscribers(context.Background(), &profileSource{profiles: []service.SubscriberProfile{gold, silver, bronze}})
	require.NoError(t, err)

	return f
}

func Test_ListChannels_Returns_Channels_Of_Verified_Subscriptions(t *testing.T) {
	for name, newUnitOfWork := range engines {
		t.Run(name, func(t *testing.T) {
			f := givenChannelFixture(t, newUnitOfWork)
			ctx := context.Background()

			require.NoError(t, f.service.AddEmail(ctx, telegramID, "reader@example.com"))
			require.NoError(t, f.service.AddEmail(ctx, telegramID, "other@example.com"))

			channels, err := f.service.ListChannels(ctx, telegramID)
			require.NoError(t, err)
			assert.Empty(t, channels)

			require.NoError(t, f.service.ConfirmEmail(ctx, telegramID, "reader@example.com", "1111"))

			channels, err = f.service.ListChannels(ctx, telegramID)
			require.NoError(t, err)
			assert.Equal(t, []service.Channel{goldChannel}, channels)

			require.NoError(t, f.service.ConfirmEmail(ctx, telegramID, "other@example.com", "2222"))

			channels, err = f.service.ListChannels(ctx, telegramID)
			require.NoError(t, err)
			assert.Equal(t, []service.Channel{goldChannel, silverChannel}, channels)
		})
	}
}

func Test_ListChannels_Fails_When_User_Is_Unknown(t *testing.T) {
	for name, newUnitOfWork := range engines {
		t.Run(name, func(t *testing.T) {
			f := givenChannelFixture(t, newUnitOfWork)

			_, err := f.service.ListChannels(context.Background(), telegramID)

			assert.ErrorIs(t, err, service.ErrUserNotFound)
		})
	}
}

func Test_CanAccessChannel(t *testing.T) {
	for name, newUnitOfWork := range engines {
		t.Run(name, func(t *testing.T) {
			f := givenChannelFixture(t, newUnitOfWork)
			ctx := context.Background()

			allowed, err := f.service.CanAccessChannel(ctx, telegramID, goldChannel.ID)
			require.NoError(t, err)
			assert.False(t, allowed, "unknown user")

			require.NoError(t, f.service.AddEmail(ctx, telegramID, "reader@example.com"))
			require.NoError(t, f.service.AddEmail(ctx, telegramID, "other@example.com"))
			require.NoError(t, f.service.ConfirmEmail(ctx, telegramID, "reader@example.com", "1111"))

			testCases := []struct {
				description string
				channel     service.Channel
				allowed     bool
			}{
				{description: "active subscription of a verified address", channel: goldChannel, allowed: true},
				{description: "subscription of an unverified address", channel: silverChannel, allowed: false},
				{description: "banned subscription", channel: bronzeChannel, allowed: false},
			}

			for _, tc := range testCases {
				allowed, err := f.service.CanAccessChannel(ctx, telegramID, tc.channel.ID)
				require.NoError(t, err, tc.description)
				assert.Equal(t, tc.allowed, allowed, tc.description)
			}
		})
	}
}

func Test_CanAccessChannel_Fails_When_Channel_Is_Unknown(t *testing.T) {
	f := givenChannelFixture(t, memoryUnitOfWork)

	_, err := f.service.CanAccessChannel(context.Background(), telegramID, 42)

	assert.ErrorIs(t, err, service.ErrChannelNotFound)
}
