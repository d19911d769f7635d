package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bruhsty/bruhsty/internal/storage"
	"github.com/bruhsty/bruhsty/internal/user"
	"github.com/bruhsty/bruhsty/persistence"
)

const (
	useCaseGetOrCreateUser = "get_or_create_user"
	useCaseAddEmail        = "add_email"
	useCaseRemoveEmail     = "remove_email"
	useCaseConfirmEmail    = "confirm_email"
	useCaseResendCode      = "resend_code"
	useCaseListUsers       = "list_users"
	useCaseForgetUser      = "forget_user"
)

// GetOrCreateUser returns the user with telegramID, creating it on first contact.
func (s *Service) GetOrCreateUser(ctx context.Context, telegramID int64) (*user.User, error) {
	var result *user.User

	err := s.run(ctx, useCaseGetOrCreateUser, func(ctx context.Context, repos storage.Repositories) error {
		u, err := s.getOrCreate(ctx, repos.Users, telegramID)
		result = u

		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// AddEmail links address to the user and sends a verification code to it.
func (s *Service) AddEmail(ctx context.Context, telegramID int64, address string) error {
	return s.run(ctx, useCaseAddEmail, func(ctx context.Context, repos storage.Repositories) error {
		u, err := s.getOrCreate(ctx, repos.Users, telegramID)
		if err != nil {
			return err
		}

		code, err := s.generateCode()
		if err != nil {
			return fmt.Errorf("generating verification code failed: %w", err)
		}

		if err := u.AddEmail(address, code, s.clock()); err != nil {
			return err
		}

		return repos.Users.Save(ctx, u)
	})
}

// RemoveEmail unlinks address from the user.
func (s *Service) RemoveEmail(ctx context.Context, telegramID int64, address string) error {
	return s.run(ctx, useCaseRemoveEmail, func(ctx context.Context, repos storage.Repositories) error {
		u, err := getUser(ctx, repos.Users, telegramID)
		if err != nil {
			return err
		}

		u.RemoveEmail(address)

		return repos.Users.Save(ctx, u)
	})
}

// ConfirmEmail verifies address with the code the user received.
func (s *Service) ConfirmEmail(ctx context.Context, telegramID int64, address, code string) error {
	return s.run(ctx, useCaseConfirmEmail, func(ctx context.Context, repos storage.Repositories) error {
		u, err := getUser(ctx, repos.Users, telegramID)
		if err != nil {
			return err
		}

		if err := u.VerifyEmail(address, code, s.clock()); err != nil {
			return err
		}

		return repos.Users.Save(ctx, u)
	})
}

// ResendCode issues a new verification code for address, replacing the active one.
func (s *Service) ResendCode(ctx context.Context, telegramID int64, address string) error {
	return s.run(ctx, useCaseResendCode, func(ctx context.Context, repos storage.Repositories) error {
		u, err := getUser(ctx, repos.Users, telegramID)
		if err != nil {
			return err
		}

		code, err := s.generateCode()
		if err != nil {
			return fmt.Errorf("generating verification code failed: %w", err)
		}

		if err := u.IssueVerificationCode(address, code, s.clock()); err != nil {
			return err
		}

		return repos.Users.Save(ctx, u)
	})
}

// ListUsers returns a page of users in Telegram id order.
func (s *Service) ListUsers(ctx context.Context, verifiedOnly bool, limit, offset uint) ([]*user.User, error) {
	spec := persistence.All()
	if verifiedOnly {
		spec = user.Verified.Eq(true)
	}

	var result []*user.User

	err := s.run(ctx, useCaseListUsers, func(ctx context.Context, repos storage.Repositories) error {
		found, err := repos.Users.Find(ctx, spec, persistence.WithLimit(limit), persistence.WithOffset(offset))
		result = found

		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ForgetUser deletes the user with all linked addresses.
func (s *Service) ForgetUser(ctx context.Context, telegramID int64) error {
	return s.run(ctx, useCaseForgetUser, func(ctx context.Context, repos storage.Repositories) error {
		_, err := repos.Users.Delete(ctx, user.ID.Eq(telegramID))
		if errors.Is(err, persistence.ErrNoRowsAffected) {
			return fmt.Errorf("%w: %d", ErrUserNotFound, telegramID)
		}

		return err
	})
}

func (s *Service) getOrCreate(ctx context.Context, users storage.UserRepository, telegramID int64) (*user.User, error) {
	u, err := users.Get(ctx, telegramID)
	if err == nil {
		return u, nil
	}

	if !errors.Is(err, persistence.ErrNotFound) {
		return nil, err
	}

	u = user.New(telegramID, s.clock())
	if err := users.Add(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func getUser(ctx context.Context, users storage.UserRepository, telegramID int64) (*user.User, error) {
	u, err := users.Get(ctx, telegramID)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrUserNotFound, telegramID)
	}

	return u, err
}
