package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bruhsty/bruhsty/internal/service"
	"github.com/bruhsty/bruhsty/internal/subscription"
)

func subscribersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "subscribers", Short: "Mirror and inspect platform subscribers"}
	cmd.AddCommand(subscribersSyncCmd())
	cmd.AddCommand(subscribersExpireCmd())
	cmd.AddCommand(subscribersListCmd())
	cmd.AddCommand(subscribersGetCmd())

	return cmd
}

func subscribersSyncCmd() *cobra.Command {
	var (
		file  string
		every time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Store the subscriber profiles of an exported JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return repeat(ctx, every, func(ctx context.Context) error {
					source, err := service.LoadFileSource(file)
					if err != nil {
						return err
					}

					report, err := a.service.SyncSubscribers(ctx, source)
					if err != nil {
						return err
					}

					fmt.Fprintf(cmd.OutOrStdout(), "fetched %d, registered %d, renewed %d, expired %d\n",
						report.Fetched, report.Registered, report.Renewed, report.Expired)

					return nil
				})
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "JSON array of subscriber profiles")
	cmd.Flags().DurationVar(&every, "every", 0, "repeat with this period until interrupted")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func subscribersExpireCmd() *cobra.Command {
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "expire",
		Short: "End every active subscription whose payment is overdue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return repeat(ctx, every, func(ctx context.Context) error {
					expired, err := a.service.ExpireOverdue(ctx)
					if err != nil {
						return err
					}

					fmt.Fprintf(cmd.OutOrStdout(), "expired %d subscriptions\n", expired)

					return nil
				})
			})
		},
	}

	cmd.Flags().DurationVar(&every, "every", 0, "repeat with this period until interrupted")

	return cmd
}

func subscribersListCmd() *cobra.Command {
	var (
		level  int64
		limit  uint
		offset uint
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active subscribers in id order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var levelID *int64
			if cmd.Flags().Changed("level") {
				levelID = &level
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				subscribers, err := a.service.ListSubscribers(ctx, levelID, limit, offset)
				if err != nil {
					return err
				}

				return printSubscribers(cmd.OutOrStdout(), subscribers)
			})
		},
	}

	cmd.Flags().Int64Var(&level, "level", 0, "only subscribers of this level")
	cmd.Flags().UintVar(&limit, "limit", 50, "maximum number of subscribers, 0 for all")
	cmd.Flags().UintVar(&offset, "offset", 0, "number of subscribers to skip")

	return cmd
}

func subscribersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one subscriber",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid subscriber id %q", args[0])
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				subscriber, err := a.service.GetSubscriber(ctx, id)
				if err != nil {
					return err
				}

				return printSubscribers(cmd.OutOrStdout(), []*subscription.Subscriber{subscriber})
			})
		},
	}
}

// repeat runs task once, or every period until ctx is done when period is positive.
func repeat(ctx context.Context, period time.Duration, task func(ctx context.Context) error) error {
	if err := task(ctx); err != nil || period <= 0 {
		return err
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := task(ctx); err != nil {
				return err
			}
		}
	}
}
