package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/api/middleware"
	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func asUser(c echo.Context, id, role string) {
	c.Set(middleware.ContextUserID, id)
	c.Set(middleware.ContextRole, role)
}

type stubAuthService struct {
	registerFn       func(ctx context.Context, name, email, password string) (string, *domain.User, error)
	loginFn          func(ctx context.Context, email, password string) (string, *domain.User, error)
	logoutFn         func(ctx context.Context, token string) error
	forgotPasswordFn func(ctx context.Context, email string) (string, error)
	resetPasswordFn  func(ctx context.Context, rawToken, password, confirm string) (string, *domain.User, error)
	updatePasswordFn func(ctx context.Context, userID, oldPassword, newPassword string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, name, email, password string) (string, *domain.User, error) {
	return s.registerFn(ctx, name, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, token string) error {
	return s.logoutFn(ctx, token)
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	return s.forgotPasswordFn(ctx, email)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, rawToken, password, confirm string) (string, *domain.User, error) {
	return s.resetPasswordFn(ctx, rawToken, password, confirm)
}

func (s *stubAuthService) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) (string, *domain.User, error) {
	return s.updatePasswordFn(ctx, userID, oldPassword, newPassword)
}

func (s *stubAuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	return nil, domain.ErrInvalidToken
}

type stubUserService struct {
	profileFn       func(ctx context.Context, id string) (*domain.User, error)
	updateProfileFn func(ctx context.Context, id, name, email string) (*domain.User, error)
	uploadAvatarFn  func(ctx context.Context, id, dataURI string) (*domain.User, error)
	listFn          func(ctx context.Context) ([]*domain.User, error)
	getFn           func(ctx context.Context, id string) (*domain.User, error)
	updateFn        func(ctx context.Context, id string, input ports.UpdateUserInput) (*domain.User, error)
	deleteFn        func(ctx context.Context, id string) error
}

func (s *stubUserService) Profile(ctx context.Context, id string) (*domain.User, error) {
	return s.profileFn(ctx, id)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, id, name, email string) (*domain.User, error) {
	return s.updateProfileFn(ctx, id, name, email)
}

func (s *stubUserService) UploadAvatar(ctx context.Context, id, dataURI string) (*domain.User, error) {
	return s.uploadAvatarFn(ctx, id, dataURI)
}

func (s *stubUserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) Update(ctx context.Context, id string, input ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, id, input)
}

func (s *stubUserService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

type stubOrderService struct {
	createFn       func(ctx context.Context, userID string, input ports.CreateOrderInput) (*domain.Order, error)
	myOrdersFn     func(ctx context.Context, userID string) ([]*domain.Order, error)
	getFn          func(ctx context.Context, id string) (*domain.Order, error)
	listFn         func(ctx context.Context) ([]*domain.Order, error)
	updateStatusFn func(ctx context.Context, id, status string) (*domain.Order, error)
	deleteFn       func(ctx context.Context, id string) error
}

func (s *stubOrderService) Create(ctx context.Context, userID string, input ports.CreateOrderInput) (*domain.Order, error) {
	return s.createFn(ctx, userID, input)
}

func (s *stubOrderService) MyOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.myOrdersFn(ctx, userID)
}

func (s *stubOrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.getFn(ctx, id)
}

func (s *stubOrderService) List(ctx context.Context) ([]*domain.Order, error) {
	return s.listFn(ctx)
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	return s.updateStatusFn(ctx, id, status)
}

func (s *stubOrderService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

type stubSalesService struct {
	computeFn func(ctx context.Context, startDate, endDate string) (*domain.SalesReport, error)
}

func (s *stubSalesService) ComputeSales(ctx context.Context, startDate, endDate string) (*domain.SalesReport, error) {
	return s.computeFn(ctx, startDate, endDate)
}

type stubCatalogService struct {
	listFn   func(ctx context.Context, filter ports.ListProductsFilter) (*ports.ProductPage, error)
	getFn    func(ctx context.Context, id string) (*domain.Product, error)
	createFn func(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error)
}

func (s *stubCatalogService) List(ctx context.Context, filter ports.ListProductsFilter) (*ports.ProductPage, error) {
	return s.listFn(ctx, filter)
}

func (s *stubCatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.getFn(ctx, id)
}

func (s *stubCatalogService) Create(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	return s.createFn(ctx, input)
}
