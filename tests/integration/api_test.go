package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "asset-marketplace/internal/adapter/http/handler"
	"asset-marketplace/internal/core/ledger"
	"asset-marketplace/internal/core/ports"
	"asset-marketplace/internal/service"
	"asset-marketplace/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPriceDecimals = int32(8)

// testApp builds a full application stack over in-memory storage and
// fake external dependencies. It exercises the real HTTP layer,
// middleware, handlers, services, and the ledger end-to-end.

type testApp struct {
	server  *httptest.Server
	oracle  *fakeOracle
	sink    *fakeSink
	journal *inMemoryEventJournal
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	log := logger.New("error", false)

	accountRepo := newInMemoryAccountRepo()
	journal := newInMemoryEventJournal()
	oracle := newFakeOracle()
	sink := newFakeSink()

	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", 24*time.Hour, "test-issuer")
	authSvc := service.NewAuthService(accountRepo, hashSvc, tokenSvc)

	led := ledger.New()
	eventSink := service.NewEventFanout(journal, nil, nil, log)
	marketSvc := service.NewMarketplaceService(led, oracle, sink, eventSink, "marketplace", log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		MarketSvc:      marketSvc,
		TokenSvc:       tokenSvc,
		Journal:        journal,
		Hub:            nil, // websocket feed unused here
		RateLimitStore: nil, // rate limiting disabled: many requests from one IP
		HealthCheckers: []ports.HealthChecker{},
		PriceDecimals:  testPriceDecimals,
		Logger:         log,
	})

	return &testApp{
		server:  httptest.NewServer(router),
		oracle:  oracle,
		sink:    sink,
		journal: journal,
	}
}

func (a *testApp) close() {
	a.server.Close()
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return res.StatusCode, decoded
}

// registerAccount registers and logs in, returning the account ID and a
// bearer token.
func (a *testApp) registerAccount(t *testing.T, username string) (string, string) {
	t.Helper()

	code, resp := a.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"password": "StrongPass123!",
	})
	require.Equal(t, http.StatusCreated, code, "register %s: %v", username, resp)
	accountID := resp["data"].(map[string]interface{})["account_id"].(string)

	code, resp = a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "StrongPass123!",
	})
	require.Equal(t, http.StatusOK, code)
	token := resp["data"].(map[string]interface{})["token"].(string)

	return accountID, token
}

func TestFullMarketplaceFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	sellerID, sellerToken := app.registerAccount(t, "seller_flow")
	buyerID, buyerToken := app.registerAccount(t, "buyer_flow")

	sellerUUID := mustUUID(t, sellerID)
	app.oracle.setToken("punks", 7, sellerUUID, true)

	// Seller lists the item
	code, resp := app.do(t, http.MethodPost, "/api/v1/listings", sellerToken, map[string]interface{}{
		"asset":    "punks",
		"token_id": 7,
		"price":    "1.5",
	})
	require.Equal(t, http.StatusCreated, code, "list: %v", resp)
	listing := resp["data"].(map[string]interface{})
	assert.Equal(t, "1.5", listing["price"])
	assert.Equal(t, sellerID, listing["seller"])

	// Anyone can read the listing
	code, resp = app.do(t, http.MethodGet, "/api/v1/listings/punks/7", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "1.5", resp["data"].(map[string]interface{})["price"])

	// Buyer pays the asking price
	code, resp = app.do(t, http.MethodPost, "/api/v1/listings/punks/7/buy", buyerToken, map[string]string{
		"paid_amount": "1.5",
	})
	require.Equal(t, http.StatusOK, code, "buy: %v", resp)

	// Custody moved to the buyer and the listing is gone
	assert.Equal(t, buyerID, app.oracle.ownerOf("punks", 7).String())
	code, _ = app.do(t, http.MethodGet, "/api/v1/listings/punks/7", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	// Seller sees the proceeds
	code, resp = app.do(t, http.MethodGet, "/api/v1/proceeds", sellerToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "1.5", resp["data"].(map[string]interface{})["balance"])

	// Withdraw pays out and zeroes the balance
	code, resp = app.do(t, http.MethodPost, "/api/v1/proceeds/withdraw", sellerToken, nil)
	require.Equal(t, http.StatusOK, code, "withdraw: %v", resp)
	assert.Equal(t, "1.5", resp["data"].(map[string]interface{})["amount"])
	assert.Equal(t, int64(150000000), app.sink.paidTo(sellerUUID))

	code, _ = app.do(t, http.MethodPost, "/api/v1/proceeds/withdraw", sellerToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	// The event log recorded the listing and the sale
	code, resp = app.do(t, http.MethodGet, "/api/v1/events", "", nil)
	require.Equal(t, http.StatusOK, code)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	require.Len(t, items, 2)
	// Most recent first
	assert.Equal(t, "ITEM_BOUGHT", items[0].(map[string]interface{})["type"])
	assert.Equal(t, "ITEM_LISTED", items[1].(map[string]interface{})["type"])
}

func TestRegister_DuplicateUsername(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.registerAccount(t, "dupe_user")

	code, resp := app.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "dupe_user",
		"password": "AnotherPass123!",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "AUTH_002", resp["error_code"])
}

func TestLogin_WrongPassword(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.registerAccount(t, "login_user")

	code, resp := app.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "login_user",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AUTH_001", resp["error_code"])
}

func TestListings_RequireAuth(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	code, resp := app.do(t, http.MethodPost, "/api/v1/listings", "", map[string]interface{}{
		"asset":    "punks",
		"token_id": 1,
		"price":    "1",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AUTH_003", resp["error_code"])
}

func TestListItem_NotOwner(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, sellerToken := app.registerAccount(t, "impostor")
	otherID, _ := app.registerAccount(t, "actual_owner")

	app.oracle.setToken("punks", 3, mustUUID(t, otherID), true)

	code, resp := app.do(t, http.MethodPost, "/api/v1/listings", sellerToken, map[string]interface{}{
		"asset":    "punks",
		"token_id": 3,
		"price":    "1",
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "MKT_002", resp["error_code"])
}

func TestListItem_NotApproved(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	sellerID, sellerToken := app.registerAccount(t, "unapproved")
	app.oracle.setToken("punks", 4, mustUUID(t, sellerID), false)

	code, resp := app.do(t, http.MethodPost, "/api/v1/listings", sellerToken, map[string]interface{}{
		"asset":    "punks",
		"token_id": 4,
		"price":    "1",
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "MKT_003", resp["error_code"])
}

func TestBuyItem_Underpayment(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	sellerID, sellerToken := app.registerAccount(t, "seller_under")
	_, buyerToken := app.registerAccount(t, "buyer_under")

	app.oracle.setToken("punks", 5, mustUUID(t, sellerID), true)

	code, _ := app.do(t, http.MethodPost, "/api/v1/listings", sellerToken, map[string]interface{}{
		"asset":    "punks",
		"token_id": 5,
		"price":    "2",
	})
	require.Equal(t, http.StatusCreated, code)

	code, resp := app.do(t, http.MethodPost, "/api/v1/listings/punks/5/buy", buyerToken, map[string]string{
		"paid_amount": "1.99",
	})
	assert.Equal(t, http.StatusPaymentRequired, code)
	assert.Equal(t, "MKT_006", resp["error_code"])
	details := resp["details"].(map[string]interface{})
	assert.Equal(t, float64(200000000), details["required"])

	// Listing is untouched
	code, _ = app.do(t, http.MethodGet, "/api/v1/listings/punks/5", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestCancelAndRelist(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	sellerID, sellerToken := app.registerAccount(t, "seller_cancel")
	app.oracle.setToken("punks", 6, mustUUID(t, sellerID), true)

	code, _ := app.do(t, http.MethodPost, "/api/v1/listings", sellerToken, map[string]interface{}{
		"asset":    "punks",
		"token_id": 6,
		"price":    "1",
	})
	require.Equal(t, http.StatusCreated, code)

	code, _ = app.do(t, http.MethodDelete, "/api/v1/listings/punks/6", sellerToken, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = app.do(t, http.MethodGet, "/api/v1/listings/punks/6", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	// Relisting after cancel works
	code, _ = app.do(t, http.MethodPost, "/api/v1/listings", sellerToken, map[string]interface{}{
		"asset":    "punks",
		"token_id": 6,
		"price":    "3",
	})
	assert.Equal(t, http.StatusCreated, code)
}

func TestUpdatePrice(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	sellerID, sellerToken := app.registerAccount(t, "seller_update")
	app.oracle.setToken("punks", 8, mustUUID(t, sellerID), true)

	code, _ := app.do(t, http.MethodPost, "/api/v1/listings", sellerToken, map[string]interface{}{
		"asset":    "punks",
		"token_id": 8,
		"price":    "1",
	})
	require.Equal(t, http.StatusCreated, code)

	code, resp := app.do(t, http.MethodPut, "/api/v1/listings/punks/8", sellerToken, map[string]string{
		"price": "2.5",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2.5", resp["data"].(map[string]interface{})["price"])

	code, resp = app.do(t, http.MethodGet, "/api/v1/listings/punks/8", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2.5", resp["data"].(map[string]interface{})["price"])
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	code, resp := app.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", resp["status"])
}
