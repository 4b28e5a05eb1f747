package sink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Pay(t *testing.T) {
	to := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payouts", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, to.String(), body["to"])
		assert.Equal(t, float64(300), body["amount"])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zerolog.Nop())
	assert.NoError(t, client.Pay(context.Background(), to, 300))
}

func TestClient_Pay_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"message": "payout channel closed"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zerolog.Nop())
	err := client.Pay(context.Background(), uuid.New(), 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payout channel closed")
}

func TestClient_Pay_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, zerolog.Nop())
	assert.Error(t, client.Pay(context.Background(), uuid.New(), 100))
}
