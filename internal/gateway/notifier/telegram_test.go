package notifier

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubTelegram(t *testing.T, handler http.HandlerFunc) (*Telegram, *httptest.Server) {
	t.Helper()
	stub := httptest.NewServer(handler)
	t.Cleanup(stub.Close)
	tg := NewTelegram("token", "chat")
	tg.BaseURL = stub.URL
	tg.Client = stub.Client()
	return tg, stub
}

func TestTelegramSendText(t *testing.T) {
	var gotBody map[string]any
	tg, _ := newStubTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, tg.SendText("LONG BTC/USDT"))
	assert.Equal(t, "chat", gotBody["chat_id"])
	assert.Equal(t, "LONG BTC/USDT", gotBody["text"])
}

func TestTelegramRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	tg, _ := newStubTelegram(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	start := time.Now()
	require.NoError(t, tg.SendText("hello"))
	assert.Equal(t, int32(3), calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), 3*time.Second, "linear backoff between attempts")
}

func TestTelegramUnconfigured(t *testing.T) {
	tg := &Telegram{}
	assert.Error(t, tg.SendText("x"))
}
