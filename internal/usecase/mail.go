package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/authmail/internal/domain"
	"github.com/ErlanBelekov/authmail/internal/repository"
)

type MailUsecase struct {
	users repository.UserRepository
	mail  MailDispatcher
}

func NewMailUsecase(users repository.UserRepository, mail MailDispatcher) *MailUsecase {
	return &MailUsecase{users: users, mail: mail}
}

type SendMailInput struct {
	UserID   string
	Receiver string
	Subject  string
	Content  string
}

// SendMail queues a message from the configured account, signed with the
// caller's name and email. A caller whose user record no longer exists is
// treated as unauthorized.
func (u *MailUsecase) SendMail(ctx context.Context, input SendMailInput) error {
	user, err := u.users.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUnauthorized
		}
		return fmt.Errorf("find user: %w", err)
	}

	u.mail.Dispatch(ctx, MailKindUser, domain.Mail{
		To:      input.Receiver,
		Subject: input.Subject,
		Body:    fmt.Sprintf("%s\nSent by %s - %s", input.Content, user.Name, user.Email),
	})
	return nil
}
