package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/viper"

	"github.com/bruhsty/bruhsty/internal/service"
	"github.com/bruhsty/bruhsty/internal/subscription"
	"github.com/bruhsty/bruhsty/internal/user"
)

type userView struct {
	TelegramID int64       `json:"telegram_id"`
	Verified   bool        `json:"verified"`
	CreatedAt  time.Time   `json:"created_at"`
	Emails     []emailView `json:"emails"`
}

type emailView struct {
	Address  string `json:"address"`
	Verified bool   `json:"verified"`
}

type subscriberView struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Subscribed  bool      `json:"subscribed"`
	LevelID     *int64    `json:"level_id"`
	NextPayTime time.Time `json:"next_pay_time"`
}

func toUserView(u *user.User) userView {
	view := userView{TelegramID: u.TelegramID(), Verified: u.Verified(), CreatedAt: u.CreatedAt(), Emails: []emailView{}}
	for _, email := range u.Emails() {
		view.Emails = append(view.Emails, emailView{Address: email.Address, Verified: email.Verified()})
	}

	return view
}

func toSubscriberView(s *subscription.Subscriber) subscriberView {
	return subscriberView{
		ID:          s.AggregateID(),
		Email:       s.Email(),
		Subscribed:  s.Subscribed(),
		LevelID:     s.LevelID(),
		NextPayTime: s.NextPayTime(),
	}
}

func printJSON(w io.Writer, v any) error {
	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

func printUsers(w io.Writer, users []*user.User) error {
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}

	if viper.GetBool("json") {
		return printJSON(w, views)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Telegram ID", "Verified", "Emails", "Created"})
	for _, view := range views {
		addresses := make([]string, 0, len(view.Emails))
		for _, email := range view.Emails {
			mark := ""
			if email.Verified {
				mark = " ✓"
			}
			addresses = append(addresses, email.Address+mark)
		}
		tw.AppendRow(table.Row{view.TelegramID, view.Verified, strings.Join(addresses, ", "), view.CreatedAt.Format(time.RFC3339)})
	}
	tw.Render()

	return nil
}

func printSubscribers(w io.Writer, subscribers []*subscription.Subscriber) error {
	views := make([]subscriberView, 0, len(subscribers))
	for _, s := range subscribers {
		views = append(views, toSubscriberView(s))
	}

	if viper.GetBool("json") {
		return printJSON(w, views)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Email", "Subscribed", "Level", "Next Payment"})
	for _, view := range views {
		level := "-"
		if view.LevelID != nil {
			level = fmt.Sprint(*view.LevelID)
		}
		tw.AppendRow(table.Row{view.ID, view.Email, view.Subscribed, level, view.NextPayTime.Format(time.RFC3339)})
	}
	tw.Render()

	return nil
}

func printChannels(w io.Writer, channels []service.Channel) error {
	if viper.GetBool("json") {
		return printJSON(w, channels)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Channel ID", "Level", "Invite Link"})
	for _, channel := range channels {
		tw.AppendRow(table.Row{channel.ID, channel.LevelID, channel.InviteLink})
	}
	tw.Render()

	return nil
}
