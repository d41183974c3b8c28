package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/carlot/carlot/internal/handler/dto"
	"github.com/carlot/carlot/internal/service"
)

// UserHandler handles registration and login.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
	errs   errorResponder
}

// NewUserHandler creates a new UserHandler. When exposeErrors is set,
// 500 bodies carry the underlying error text.
func NewUserHandler(svc *service.UserService, logger *slog.Logger, exposeErrors bool) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
		errs:   errorResponder{logger: logger, detail: exposeErrors},
	}
}

// Register handles POST /register.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !readJSON(w, r, &req) {
		return
	}

	if _, err := h.svc.Register(r.Context(), req.Username, req.Password); err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			writeMessage(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, service.ErrUsernameTaken):
			writeMessage(w, http.StatusConflict, "Username already exists")
		default:
			h.errs.internal(w, r, err)
		}
		return
	}

	writeMessage(w, http.StatusCreated, "User Created Successfully")
}

// Login handles POST /login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !readJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeMessage(w, http.StatusUnauthorized, "User not found")
		case errors.Is(err, service.ErrInvalidPassword):
			writeMessage(w, http.StatusUnauthorized, "Invalid password")
		default:
			h.errs.internal(w, r, err)
		}
		return
	}

	h.logger.Info("user_logged_in", slog.String("username", res.Username))

	writeJSON(w, http.StatusOK, dto.ToLoginResponse(res))
}
