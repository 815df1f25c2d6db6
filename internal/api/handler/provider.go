package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"

	"github.com/artistgrade/storefront/internal/core/domain"
)

// ProviderGateway runs the redirect-based identity provider round trip.
type ProviderGateway interface {
	BeginAuth(c echo.Context) error
	CompleteAuth(c echo.Context) (domain.ProviderProfile, error)
	Logout(c echo.Context) error
}

// GothGateway drives the providers registered with goth.UseProviders.
// gothic.Store must be set before use.
type GothGateway struct{}

func NewGothGateway() GothGateway {
	return GothGateway{}
}

func (GothGateway) BeginAuth(c echo.Context) error {
	if _, err := goth.GetProvider(c.Param("provider")); err != nil {
		return domain.Invalid("provider", "unknown identity provider")
	}
	gothic.BeginAuthHandler(c.Response(), withProvider(c))
	return nil
}

func (GothGateway) CompleteAuth(c echo.Context) (domain.ProviderProfile, error) {
	user, err := gothic.CompleteUserAuth(c.Response(), withProvider(c))
	if err != nil {
		return domain.ProviderProfile{}, err
	}
	if user.UserID == "" {
		return domain.ProviderProfile{}, errors.New("provider returned no subject")
	}
	return profileFromGoth(user), nil
}

func (GothGateway) Logout(c echo.Context) error {
	return gothic.Logout(c.Response(), c.Request())
}

// withProvider exposes the :provider path param where gothic looks for it.
func withProvider(c echo.Context) *http.Request {
	req := c.Request()
	q := req.URL.Query()
	q.Set("provider", c.Param("provider"))
	req.URL.RawQuery = q.Encode()
	return req
}

func profileFromGoth(u goth.User) domain.ProviderProfile {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		name = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	if name == "" {
		name = u.NickName
	}
	return domain.ProviderProfile{
		Provider: u.Provider,
		Subject:  u.UserID,
		Name:     name,
		Email:    u.Email,
		Picture:  u.AvatarURL,
	}
}
