package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/artistgrade/storefront/internal/api/metrics"
	"github.com/artistgrade/storefront/internal/api/session"
	"github.com/artistgrade/storefront/internal/core/domain"
	"github.com/artistgrade/storefront/internal/core/ports"
)

// SessionManager establishes and destroys the caller's session.
type SessionManager interface {
	Establish(c echo.Context, s domain.Session) error
	Destroy(c echo.Context) error
}

type AuthHandler struct {
	authService ports.AuthService
	sessions    SessionManager
	provider    ProviderGateway
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, sessions SessionManager, provider ProviderGateway, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, provider: provider, log: log}
}

type registerRequest struct {
	Fullname        string `json:"fullname" form:"fullname"`
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	Phone           string `json:"phone" form:"phone"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
	Gender          string `json:"gender" form:"gender"`
}

type registerResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	Redirect string `json:"-" form:"redirect" query:"redirect"`
}

type loginUser struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Message string    `json:"message"`
	User    loginUser `json:"user"`
}

// Register creates a new local account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Fullname:        req.Fullname,
		Username:        req.Username,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Gender:          req.Gender,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{Message: "User registered successfully!", User: user})
}

// Login checks local credentials and starts a session. JSON callers get the
// minimal user view back; form posts are redirected.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Success      302
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sess, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(domain.ProviderLocal, "failure").Inc()
		return err
	}
	if err := h.sessions.Establish(c, *sess); err != nil {
		return err
	}
	metrics.LoginAttemptsTotal.WithLabelValues(domain.ProviderLocal, "success").Inc()

	if !isJSONRequest(c) {
		return c.Redirect(http.StatusFound, safeRedirect(req.Redirect))
	}
	return c.JSON(http.StatusOK, loginResponse{
		Message: "Login successful",
		User:    loginUser{ID: sess.UserID, Fullname: sess.Name, Role: sess.Role},
	})
}

// Logout destroys the session and sends the browser home.
//
// @Summary      Logout
// @Tags         auth
// @Success      302
// @Router       /logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.Destroy(c); err != nil {
		return err
	}
	if h.provider != nil {
		if err := h.provider.Logout(c); err != nil {
			h.log.Debug().Err(err).Msg("provider logout")
		}
	}
	return c.Redirect(http.StatusFound, "/")
}

// CurrentUser returns the signed-in identity or null.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.CurrentUser
// @Router       /api/current_user [get]
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	user, err := h.authService.CurrentUser(c.Request().Context(), session.Current(c))
	if err != nil {
		return err
	}
	if user == nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, user)
}

// BeginProviderAuth redirects to the identity provider.
//
// @Summary      Start identity provider login
// @Tags         auth
// @Param        provider  path  string  true  "Provider name (e.g. google)"
// @Success      302
// @Router       /auth/{provider} [get]
func (h *AuthHandler) BeginProviderAuth(c echo.Context) error {
	return h.provider.BeginAuth(c)
}

// ProviderCallback completes the identity provider round trip. Failures
// land back on the login page.
//
// @Summary      Identity provider callback
// @Tags         auth
// @Param        provider  path  string  true  "Provider name (e.g. google)"
// @Success      302
// @Router       /auth/{provider}/callback [get]
func (h *AuthHandler) ProviderCallback(c echo.Context) error {
	name := c.Param("provider")

	profile, err := h.provider.CompleteAuth(c)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(name, "failure").Inc()
		h.log.Warn().Err(err).Str("provider", name).Msg("provider callback failed")
		return c.Redirect(http.StatusFound, "/login")
	}

	sess, err := h.authService.LoginWithProvider(c.Request().Context(), profile)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(name, "failure").Inc()
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.Redirect(http.StatusFound, "/login")
		}
		return err
	}
	if err := h.sessions.Establish(c, *sess); err != nil {
		return err
	}
	metrics.LoginAttemptsTotal.WithLabelValues(name, "success").Inc()
	return c.Redirect(http.StatusFound, "/")
}

func isJSONRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

// safeRedirect only follows local paths.
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}
