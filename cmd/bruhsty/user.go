package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bruhsty/bruhsty/internal/user"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage users and their email addresses"}
	cmd.AddCommand(userGetCmd())
	cmd.AddCommand(userAddEmailCmd())
	cmd.AddCommand(userRemoveEmailCmd())
	cmd.AddCommand(userConfirmCmd())
	cmd.AddCommand(userResendCmd())
	cmd.AddCommand(userListCmd())
	cmd.AddCommand(userForgetCmd())
	cmd.AddCommand(userChannelsCmd())

	return cmd
}

func userGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <telegram-id>",
		Short: "Show a user, creating it on first contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			telegramID, err := parseTelegramID(args[0])
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				u, err := a.service.GetOrCreateUser(ctx, telegramID)
				if err != nil {
					return err
				}

				return printUsers(cmd.OutOrStdout(), []*user.User{u})
			})
		},
	}
}

func userAddEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-email <telegram-id> <email>",
		Short: "Link an email address and send a verification code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			telegramID, err := parseTelegramID(args[0])
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.service.AddEmail(ctx, telegramID, args[1]); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "verification code sent to %s\n", args[1])

				return nil
			})
		},
	}
}

func userRemoveEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-email <telegram-id> <email>",
		Short: "Unlink an email address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			telegramID, err := parseTelegramID(args[0])
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				return a.service.RemoveEmail(ctx, telegramID, args[1])
			})
		},
	}
}

func userConfirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <telegram-id> <email> <code>",
		Short: "Verify an email address with its code",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			telegramID, err := parseTelegramID(args[0])
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.service.ConfirmEmail(ctx, telegramID, args[1], args[2]); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s verified\n", args[1])

				return nil
			})
		},
	}
}

func userResendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resend <telegram-id> <email>",
		Short: "Send a new verification code, replacing the active one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			telegramID, err := parseTelegramID(args[0])
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				return a.service.ResendCode(ctx, telegramID, args[1])
			})
		},
	}
}

func userListCmd() *cobra.Command {
	var (
		verifiedOnly bool
		limit        uint
		offset       uint
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users in Telegram id order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				users, err := a.service.ListUsers(ctx, verifiedOnly, limit, offset)
				if err != nil {
					return err
				}

				return printUsers(cmd.OutOrStdout(), users)
			})
		},
	}

	cmd.Flags().BoolVar(&verifiedOnly, "verified", false, "only users with a verified email")
	cmd.Flags().UintVar(&limit, "limit", 50, "maximum number of users, 0 for all")
	cmd.Flags().UintVar(&offset, "offset", 0, "number of users to skip")

	return cmd
}

func userForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <telegram-id>",
		Short: "Delete a user with all linked addresses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			telegramID, err := parseTelegramID(args[0])
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				return a.service.ForgetUser(ctx, telegramID)
			})
		},
	}
}

func userChannelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "channels <telegram-id>",
		Short: "List the channels the subscriptions of a user's verified addresses open",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			telegramID, err := parseTelegramID(args[0])
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				channels, err := a.service.ListChannels(ctx, telegramID)
				if err != nil {
					return err
				}

				return printChannels(cmd.OutOrStdout(), channels)
			})
		},
	}
}
