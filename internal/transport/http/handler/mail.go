package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/authmail/internal/domain"
	"github.com/ErlanBelekov/authmail/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type mailUsecaser interface {
	SendMail(ctx context.Context, input usecase.SendMailInput) error
}

type MailHandler struct {
	mailUsecase mailUsecaser
	logger      *slog.Logger
}

func NewMailHandler(mailUsecase mailUsecaser, logger *slog.Logger) *MailHandler {
	return &MailHandler{
		mailUsecase: mailUsecase,
		logger:      logger.With("component", "mail_handler"),
	}
}

// AuthKey is consumed by the auth middleware; it is declared here so the
// body binds cleanly.
type sendMailRequest struct {
	AuthKey       string `json:"authKey"`
	ReceiverEmail string `json:"receiver_email" binding:"required,email"`
	Subject       string `json:"subject"        binding:"required"`
	Content       string `json:"content"        binding:"required"`
}

var sendMailFields = map[string]fieldMessage{
	"ReceiverEmail": {param: "receiver_email", msg: "Receiver email is not a valid email address"},
	"Subject":       {param: "subject", msg: "Mail subject is required"},
	"Content":       {param: "content", msg: "Mail content is required"},
}

// POST /sendMail (behind middleware.Auth)
// Responds as soon as the message is queued.
func (h *MailHandler) SendMail(c *gin.Context) {
	var req sendMailRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		badRequest(c, bindingErrors(err, sendMailFields)...)
		return
	}

	err := h.mailUsecase.SendMail(c.Request.Context(), usecase.SendMailInput{
		UserID:   c.GetString("userID"),
		Receiver: req.ReceiverEmail,
		Subject:  req.Subject,
		Content:  req.Content,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": errUnauthorized})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "send mail", "error", err)
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Status: true, Msg: msgEmailSent})
}
