// Package user contains the user aggregate: a Telegram account with the email addresses
// linked to it and the verification codes issued for them.
//
// Mutating methods record their outcome as domain events on the aggregate:
//
//	u := user.New(telegramID, now)
//	err := u.AddEmail("reader@example.com", code, now) // pushes VerificationCodeIssued
//	err = u.VerifyEmail("reader@example.com", code, now) // pushes EmailVerified
package user
