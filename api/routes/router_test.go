package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brightbasket/storefront-backend/internal/auth"
	"github.com/brightbasket/storefront-backend/internal/cart"
	"github.com/brightbasket/storefront-backend/internal/catalog"
	"github.com/brightbasket/storefront-backend/internal/orders"
	"github.com/brightbasket/storefront-backend/internal/users"
	"github.com/brightbasket/storefront-backend/internal/wishlist"
	pkgAuth "github.com/brightbasket/storefront-backend/pkg/auth"
	"github.com/brightbasket/storefront-backend/pkg/auth/session"
	"github.com/brightbasket/storefront-backend/pkg/config"
	"github.com/brightbasket/storefront-backend/pkg/enums"
	"github.com/brightbasket/storefront-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, sessionID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	panic("unimplemented")
}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
	panic("unimplemented")
}

func (stubAuthService) Logout(ctx context.Context, sessionID string) error {
	return nil
}

func (stubAuthService) Profile(ctx context.Context, userID uuid.UUID) (*users.Profile, error) {
	return &users.Profile{ID: userID}, nil
}

func (stubAuthService) ListUsers(ctx context.Context) ([]users.Profile, error) {
	return []users.Profile{}, nil
}

func (stubAuthService) ForgotPassword(ctx context.Context, req auth.ForgotPasswordRequest) (string, error) {
	panic("unimplemented")
}

func (stubAuthService) ResetPassword(ctx context.Context, req auth.ResetPasswordRequest) error {
	panic("unimplemented")
}

type stubCatalogService struct{}

func (stubCatalogService) List(ctx context.Context, query catalog.ListQuery) (*catalog.ProductPage, error) {
	return &catalog.ProductPage{Products: []catalog.ProductDTO{}}, nil
}

func (stubCatalogService) Get(ctx context.Context, id uuid.UUID) (*catalog.ProductDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) Create(ctx context.Context, req catalog.UpsertProductRequest) (*catalog.ProductDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) Update(ctx context.Context, id uuid.UUID, req catalog.UpsertProductRequest) (*catalog.ProductDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubCartService struct{}

func (stubCartService) GetCart(ctx context.Context, userID uuid.UUID) (*cart.CartDTO, error) {
	return &cart.CartDTO{Items: []cart.ItemDTO{}}, nil
}

func (stubCartService) SetItems(ctx context.Context, userID uuid.UUID, req cart.SetItemsRequest) (*cart.CartDTO, error) {
	panic("unimplemented")
}

type stubWishlistService struct{}

func (stubWishlistService) List(ctx context.Context, userID uuid.UUID) ([]catalog.ProductDTO, error) {
	return []catalog.ProductDTO{}, nil
}

func (stubWishlistService) Toggle(ctx context.Context, userID, productID uuid.UUID) (*wishlist.ToggleResult, error) {
	panic("unimplemented")
}

type stubOrdersService struct{}

func (stubOrdersService) CreateOrder(ctx context.Context, userID uuid.UUID, req orders.CreateOrderRequest) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) GetOrder(ctx context.Context, requesterID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) ListMine(ctx context.Context, userID uuid.UUID) ([]orders.OrderDTO, error) {
	return []orders.OrderDTO{}, nil
}

func (stubOrdersService) ListAll(ctx context.Context) ([]orders.OrderDTO, error) {
	return []orders.OrderDTO{}, nil
}

func (stubOrdersService) CreatePaymentOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*orders.GatewayOrderResponse, error) {
	panic("unimplemented")
}

func (stubOrdersService) VerifyPayment(ctx context.Context, userID uuid.UUID, req orders.VerifyPaymentRequest) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		stubPinger{},
		stubSessionChecker{},
		nil,
		stubAuthService{},
		stubCatalogService{},
		stubCartService{},
		stubWishlistService{},
		stubOrdersService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewSessionID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestProductListingIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/products?page=1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public product listing got %d", resp.Code)
	}
}

func TestCartRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/cart/mine", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestCartSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/cart/mine", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for cart fetch got %d", resp.Code)
	}
}

func TestProductMutationsRequireAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	target := "/api/products/" + uuid.NewString()

	customer := httptest.NewRequest(http.MethodDelete, target, nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer delete got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodDelete, target, nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin delete got %d", resp.Code)
	}
}

func TestOrderListingRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/orders/", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer order listing got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/orders/", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin order listing got %d", resp.Code)
	}
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
	if got := resp.Header().Get("X-Storefront-Env"); got != "test" {
		t.Fatalf("expected env header test got %q", got)
	}
}
