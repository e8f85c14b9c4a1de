package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ErlanBelekov/authmail/internal/domain"
	"github.com/ErlanBelekov/authmail/internal/password"
	"github.com/ErlanBelekov/authmail/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
type authUsecaser interface {
	Login(ctx context.Context, email, password string) (string, error)
	Signup(ctx context.Context, input usecase.SignupInput) (*domain.User, string, error)
	ForgetPassword(ctx context.Context, email string) error
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
	}
}

var (
	emailField    = fieldMessage{param: "email", msg: "Please include a valid email address"}
	passwordField = fieldMessage{param: "password", msg: "Password should be atleast 6 characters long"}
)

// checkPassword rejects passwords bcrypt cannot hash. The binding tag's max
// counts runes, and bcrypt's limit is in bytes.
func checkPassword(pw string) []errorItem {
	if len(pw) > password.MaxLength {
		return []errorItem{{Msg: errPasswordTooLong, Param: "password", Location: "body"}}
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

var loginFields = map[string]fieldMessage{
	"Email":    emailField,
	"Password": passwordField,
}

type loginResponse struct {
	Status  bool   `json:"status"`
	AuthKey string `json:"authKey"`
}

// POST /login
// Unknown email and wrong password produce the same 400 body.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindingErrors(err, loginFields)...)
		return
	}
	if items := checkPassword(req.Password); items != nil {
		badRequest(c, items...)
		return
	}

	authKey, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			badRequest(c, errorItem{Msg: errInvalidCredentials})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, loginResponse{Status: true, AuthKey: authKey})
}

type signupRequest struct {
	Name     string `json:"name"     binding:"required"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

var signupFields = map[string]fieldMessage{
	"Name":     {param: "name", msg: errNameBlank},
	"Email":    emailField,
	"Password": passwordField,
}

type signupResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	AuthKey string `json:"authKey"`
}

// POST /signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindingErrors(err, signupFields)...)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	items := checkPassword(req.Password)
	if req.Name == "" {
		items = append([]errorItem{{Msg: errNameBlank, Param: "name", Location: "body"}}, items...)
	}
	if len(items) > 0 {
		badRequest(c, items...)
		return
	}

	_, authKey, err := h.authUsecase.Signup(c.Request.Context(), usecase.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			badRequest(c, errorItem{Msg: errEmailTaken})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "signup", "error", err)
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, signupResponse{Status: true, Message: msgUserRegistered, AuthKey: authKey})
}

type forgetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

var forgetPasswordFields = map[string]fieldMessage{
	"Email": {param: "email", msg: "Email is required"},
}

type messageResponse struct {
	Status bool   `json:"status"`
	Msg    string `json:"msg"`
}

// POST /forgetPassword
// Success means the temporary password is stored; delivery of the email
// happens afterwards and is not reported.
func (h *AuthHandler) ForgetPassword(c *gin.Context) {
	var req forgetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindingErrors(err, forgetPasswordFields)...)
		return
	}

	if err := h.authUsecase.ForgetPassword(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			badRequest(c, errorItem{Msg: errUserNotFound})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "forget password", "error", err)
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Status: true, Msg: msgPasswordReset})
}
