package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/artistgrade/storefront/internal/core/domain"
	"github.com/artistgrade/storefront/internal/core/ports"
)

type stubAuthService struct {
	registerFn    func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn       func(ctx context.Context, email, password string) (*domain.Session, error)
	providerFn    func(ctx context.Context, p domain.ProviderProfile) (*domain.Session, error)
	currentUserFn func(ctx context.Context, s *domain.Session) (*domain.CurrentUser, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) LoginWithProvider(ctx context.Context, p domain.ProviderProfile) (*domain.Session, error) {
	return s.providerFn(ctx, p)
}

func (s *stubAuthService) CurrentUser(ctx context.Context, sess *domain.Session) (*domain.CurrentUser, error) {
	return s.currentUserFn(ctx, sess)
}

type stubSessions struct {
	established []domain.Session
	destroyed   int
}

func (s *stubSessions) Establish(_ echo.Context, sess domain.Session) error {
	s.established = append(s.established, sess)
	return nil
}

func (s *stubSessions) Destroy(echo.Context) error {
	s.destroyed++
	return nil
}

type stubProvider struct {
	profile   domain.ProviderProfile
	err       error
	begun     int
	loggedOut int
}

func (p *stubProvider) BeginAuth(c echo.Context) error {
	p.begun++
	return c.Redirect(http.StatusFound, "https://accounts.example.com/auth")
}

func (p *stubProvider) CompleteAuth(echo.Context) (domain.ProviderProfile, error) {
	return p.profile, p.err
}

func (p *stubProvider) Logout(echo.Context) error {
	p.loggedOut++
	return nil
}

type stubOrderService struct {
	createFn func(ctx context.Context, in ports.CreateOrderInput) (*ports.CreateOrderResult, error)
	statusFn func(ctx context.Context, id, status string) (*domain.Order, error)
}

func (s *stubOrderService) CreateOrder(ctx context.Context, in ports.CreateOrderInput) (*ports.CreateOrderResult, error) {
	return s.createFn(ctx, in)
}

func (s *stubOrderService) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func (s *stubOrderService) ListOrders(context.Context) ([]*domain.Order, error) {
	return nil, nil
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	return s.statusFn(ctx, id, status)
}

func (s *stubOrderService) DeleteOrder(context.Context, string) error {
	return nil
}

type stubCatalogService struct {
	createFn func(ctx context.Context, in ports.ProductInput) (*domain.Product, error)
	updateFn func(ctx context.Context, id string, p ports.ProductPatch) (*domain.Product, error)
	deleted  []string
}

func (s *stubCatalogService) ListProducts(context.Context) ([]*domain.Product, error) {
	return nil, nil
}

func (s *stubCatalogService) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	return nil, domain.ErrProductNotFound
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, in ports.ProductInput) (*domain.Product, error) {
	return s.createFn(ctx, in)
}

func (s *stubCatalogService) UpdateProduct(ctx context.Context, id string, p ports.ProductPatch) (*domain.Product, error) {
	return s.updateFn(ctx, id, p)
}

func (s *stubCatalogService) DeleteProduct(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func readAll(r io.Reader) string {
	b, _ := io.ReadAll(r)
	return string(b)
}
