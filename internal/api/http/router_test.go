package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/shop-service/internal/api/http/handlers"
	"github.com/spec-kit/shop-service/internal/auth"
	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/observability"
	"github.com/spec-kit/shop-service/internal/repository/memory"
	"github.com/spec-kit/shop-service/internal/service"
)

type testServer struct {
	t      *testing.T
	app    *fiber.App
	store  *memory.Store
	tokens *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: bcrypt.MinCost}}

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:    store.Users(),
		AccountRepo: store.Accounts(),
		Transactor:  store,
	})
	ledger := service.NewLedgerService(service.LedgerDependencies{
		AccountRepo: store.Accounts(),
		Transactor:  store,
		Dispatcher:  dispatcher,
	})
	orders := service.NewOrderService(service.OrderDependencies{
		OrderRepo:   store.Orders(),
		ProductRepo: store.Products(),
		UserRepo:    store.Users(),
		Transactor:  store,
		Dispatcher:  dispatcher,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("shop-service", "test", handlers.Dependency{Name: "store", Check: store}),
		Auth:           handlers.NewAuthHandler(authService),
		Products:       handlers.NewProductsHandler(service.NewCatalogService(service.CatalogDependencies{ProductRepo: store.Products()})),
		Account:        handlers.NewAccountHandler(ledger),
		Orders:         handlers.NewOrdersHandler(orders),
		Profiles:       handlers.NewProfilesHandler(service.NewProfileService(service.ProfileDependencies{ProfileRepo: store.Profiles()})),
		Posts:          handlers.NewPostsHandler(service.NewPostService(service.PostDependencies{PostRepo: store.Posts(), ProfileRepo: store.Profiles()})),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.Users()),
		Metrics:        metrics,
	})
	return &testServer{t: t, app: app, store: store, tokens: authService.TokenManager()}
}

func (s *testServer) do(method, path, token string, body any) (int, map[string]any, []byte) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			encoded, err := json.Marshal(body)
			require.NoError(s.t, err)
			raw = string(encoded)
		}
		reader = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)

	var obj map[string]any
	_ = json.Unmarshal(data, &obj)
	return resp.StatusCode, obj, data
}

func (s *testServer) register(email string) (string, int64) {
	s.t.Helper()
	status, body, raw := s.do(nethttp.MethodPost, "/auth/register", "", map[string]string{
		"username": "shopper",
		"email":    email,
		"password": "password123",
	})
	require.Equal(s.t, nethttp.StatusCreated, status, string(raw))
	user := body["user"].(map[string]any)
	return body["token"].(string), int64(user["id"].(float64))
}

func (s *testServer) staffToken() string {
	s.t.Helper()
	staff := &domain.User{Email: "staff@example.com", Username: "staff", IsActive: true, IsStaff: true}
	require.NoError(s.t, s.store.Users().Create(context.Background(), staff))
	token, _, err := s.tokens.GenerateToken(staff.ID, true)
	require.NoError(s.t, err)
	return token
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	status, body, _ := srv.do(nethttp.MethodGet, "/health/live", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body, _ = srv.do(nethttp.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "ready", body["status"])

	status, _, raw := srv.do(nethttp.MethodGet, "/metrics", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Contains(t, string(raw), "http_requests_total")
}

func TestBalanceWalkthrough(t *testing.T) {
	srv := newTestServer(t)
	token, userID := srv.register("wallet@example.com")

	status, body, raw := srv.do(nethttp.MethodGet, "/account", token, nil)
	require.Equal(t, nethttp.StatusOK, status, string(raw))
	var accounts []map[string]any
	require.NoError(t, json.Unmarshal(raw, &accounts))
	require.Len(t, accounts, 1)
	assert.Equal(t, "0.00", accounts[0]["balance"])
	assert.Equal(t, float64(userID), accounts[0]["user"])

	status, body, _ = srv.do(nethttp.MethodPost, "/account/deposit", token, `{"depositAmount": 10.00}`)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "10.00", body["new_balance"])

	status, body, _ = srv.do(nethttp.MethodPost, "/account/withdraw", token, `{"cart_Total": 15}`)
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "Insufficient balance.", body["detail"])

	status, body, _ = srv.do(nethttp.MethodPost, "/account/deposit", token, `{"depositAmount": "5"}`)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "15.00", body["new_balance"])

	status, body, _ = srv.do(nethttp.MethodPost, "/account/withdraw", token, `{"cart_Total": "15.00"}`)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "0.00", body["new_balance"])

	status, _, raw = srv.do(nethttp.MethodGet, "/account/transactions", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(raw, &entries))
	assert.Len(t, entries, 3)
}

func TestBalanceValidation(t *testing.T) {
	srv := newTestServer(t)
	token, _ := srv.register("strict@example.com")

	for _, payload := range []string{
		`{"depositAmount": 0}`,
		`{"depositAmount": -3}`,
		`{"depositAmount": 1.005}`,
		`{"depositAmount": 100000000}`,
		`{"depositAmount": "abc"}`,
		`{}`,
	} {
		status, body, _ := srv.do(nethttp.MethodPost, "/account/deposit", token, payload)
		assert.Equal(t, nethttp.StatusBadRequest, status, payload)
		assert.NotEmpty(t, body["detail"], payload)
	}
}

func TestAuthenticationRequired(t *testing.T) {
	srv := newTestServer(t)

	status, body, _ := srv.do(nethttp.MethodGet, "/account", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "UNAUTHORIZED", errBody["code"])
	assert.Equal(t, errBody["message"], body["detail"])

	status, _, _ = srv.do(nethttp.MethodPost, "/orders", "not-a-token", map[string]any{"items": []any{}})
	assert.Equal(t, nethttp.StatusUnauthorized, status)
}

func TestLoginFlow(t *testing.T) {
	srv := newTestServer(t)
	srv.register("login@example.com")

	status, body, _ := srv.do(nethttp.MethodPost, "/auth/login", "", map[string]string{"email": "login@example.com", "password": "password123"})
	require.Equal(t, nethttp.StatusOK, status)
	user := body["user"].(map[string]any)
	assert.Equal(t, "login@example.com", user["email"])
	assert.Equal(t, "shopper", user["username"])

	status, body, _ = srv.do(nethttp.MethodGet, "/auth/me", body["token"].(string), nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "login@example.com", body["email"])

	status, body, _ = srv.do(nethttp.MethodPost, "/auth/login", "", map[string]string{"email": "login@example.com", "password": "nope-nope"})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "Invalid credentials.", body["detail"])
}

func TestCatalogAndOrders(t *testing.T) {
	srv := newTestServer(t)
	staff := srv.staffToken()
	token, _ := srv.register("orders@example.com")

	status, _, _ := srv.do(nethttp.MethodPost, "/products", token, map[string]any{"name": "A", "type": "food", "price": "2.50"})
	assert.Equal(t, nethttp.StatusForbidden, status)

	createProduct := func(name, price string) int64 {
		status, body, raw := srv.do(nethttp.MethodPost, "/products", staff, map[string]any{"name": name, "type": "food", "price": price})
		require.Equal(t, nethttp.StatusCreated, status, string(raw))
		return int64(body["id"].(float64))
	}
	a := createProduct("A", "2.50")
	b := createProduct("B", "1.00")

	status, _, raw := srv.do(nethttp.MethodGet, "/products", "", nil)
	require.Equal(t, nethttp.StatusOK, status)
	var products []map[string]any
	require.NoError(t, json.Unmarshal(raw, &products))
	require.Len(t, products, 2)
	assert.Equal(t, "2.50", products[0]["price"])
	assert.Equal(t, float64(1), products[0]["quantity"])

	status, body, raw := srv.do(nethttp.MethodPost, "/orders", token, map[string]any{"items": []map[string]any{
		{"product_id": a, "quantity": 2},
		{"product_id": b, "quantity": 3},
	}})
	require.Equal(t, nethttp.StatusCreated, status, string(raw))
	assert.Equal(t, "8.00", body["total_price"])
	assert.Equal(t, "Pending", body["status"])
	assert.Equal(t, "orders@example.com", body["user"])
	orderID := int64(body["id"].(float64))

	status, body, _ = srv.do(nethttp.MethodPatch, "/products/"+strconv.FormatInt(a, 10), staff, map[string]any{"price": "9.99"})
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "9.99", body["price"])

	status, body, _ = srv.do(nethttp.MethodGet, "/orders/"+strconv.FormatInt(orderID, 10), token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "2.50", items[0].(map[string]any)["price"])
	assert.Equal(t, "8.00", body["total_price"])

	status, body, _ = srv.do(nethttp.MethodPost, "/orders", token, map[string]any{"items": []map[string]any{
		{"product_id": a, "quantity": 1},
		{"product_id": 999, "quantity": 1},
	}})
	assert.Equal(t, nethttp.StatusNotFound, status)
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, float64(999), details["product_id"])
	assert.Equal(t, 1, srv.store.Stats().Orders)

	status, _, _ = srv.do(nethttp.MethodPost, "/orders", token, map[string]any{"items": []any{}})
	assert.Equal(t, nethttp.StatusBadRequest, status)

	status, _, _ = srv.do(nethttp.MethodDelete, "/products/"+strconv.FormatInt(a, 10), staff, nil)
	assert.Equal(t, nethttp.StatusConflict, status)

	status, _, _ = srv.do(nethttp.MethodPatch, "/orders/"+strconv.FormatInt(orderID, 10)+"/status", token, map[string]string{"status": "Processing"})
	assert.Equal(t, nethttp.StatusForbidden, status)

	status, body, _ = srv.do(nethttp.MethodPatch, "/orders/"+strconv.FormatInt(orderID, 10)+"/status", staff, map[string]string{"status": "Processing"})
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "Processing", body["status"])

	other, _ := srv.register("other@example.com")
	status, _, _ = srv.do(nethttp.MethodGet, "/orders/"+strconv.FormatInt(orderID, 10), other, nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
}

func TestProfilesAndPosts(t *testing.T) {
	srv := newTestServer(t)
	token, _ := srv.register("blog@example.com")
	other, _ := srv.register("reader@example.com")

	status, body, _ := srv.do(nethttp.MethodPost, "/userprofiles", token, map[string]string{"bio": "hi"})
	require.Equal(t, nethttp.StatusCreated, status)
	assert.Equal(t, "blog@example.com", body["user"])
	profileID := strconv.FormatInt(int64(body["id"].(float64)), 10)

	status, _, _ = srv.do(nethttp.MethodPatch, "/userprofiles/"+profileID, other, map[string]string{"bio": "x"})
	assert.Equal(t, nethttp.StatusForbidden, status)

	status, body, _ = srv.do(nethttp.MethodPost, "/posts", token, map[string]string{"title": "Hello", "content": "World"})
	require.Equal(t, nethttp.StatusCreated, status)
	assert.Equal(t, "shopper", body["author"])
	postID := strconv.FormatInt(int64(body["id"].(float64)), 10)

	status, _, raw := srv.do(nethttp.MethodGet, "/posts", "", nil)
	require.Equal(t, nethttp.StatusOK, status)
	var posts []map[string]any
	require.NoError(t, json.Unmarshal(raw, &posts))
	assert.Len(t, posts, 1)

	status, _, _ = srv.do(nethttp.MethodDelete, "/posts/"+postID, other, nil)
	assert.Equal(t, nethttp.StatusForbidden, status)

	status, _, _ = srv.do(nethttp.MethodDelete, "/userprofiles/"+profileID, token, nil)
	assert.Equal(t, nethttp.StatusNoContent, status)

	status, _, _ = srv.do(nethttp.MethodGet, "/posts/"+postID, "", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)
	status, body, _ := srv.do(nethttp.MethodGet, "/nope", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])
}
