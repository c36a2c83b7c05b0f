package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestTelegramNotify(t *testing.T) {
	fake := &fakeSender{}
	tg := &Telegram{api: fake, chatID: 42}

	require.NoError(t, tg.Notify(context.Background(), "2 products out of stock"))
	require.Len(t, fake.sent, 1)
	assert.Equal(t, int64(42), fake.sent[0].ChatID)
	assert.Equal(t, "2 products out of stock", fake.sent[0].Text)
}

func TestTelegramNotifyTruncates(t *testing.T) {
	fake := &fakeSender{}
	tg := &Telegram{api: fake, chatID: 1}

	require.NoError(t, tg.Notify(context.Background(), strings.Repeat("x", 5000)))
	assert.Len(t, []rune(fake.sent[0].Text), maxMessageLen)
}

func TestTelegramNotifyErrors(t *testing.T) {
	tg := &Telegram{api: &fakeSender{err: errors.New("blocked")}, chatID: 1}
	assert.ErrorContains(t, tg.Notify(context.Background(), "hi"), "blocked")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tg.Notify(ctx, "hi"), context.Canceled)
}

func TestNewTelegramWithEndpoint(t *testing.T) {
	var texts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			json.NewEncoder(w).Encode(map[string]interface{}{
				"ok":     true,
				"result": map[string]interface{}{"id": 1, "is_bot": true, "first_name": "stockroom", "username": "stockroom_bot"},
			})
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			require.NoError(t, r.ParseForm())
			texts = append(texts, r.FormValue("text"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"ok":     true,
				"result": map[string]interface{}{"message_id": 7, "date": 0, "chat": map[string]interface{}{"id": 42, "type": "private"}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tg, err := NewTelegramWithEndpoint("token", srv.URL+"/bot%s/%s", 42)
	require.NoError(t, err)
	require.NoError(t, tg.Notify(context.Background(), "low stock"))
	assert.Equal(t, []string{"low stock"}, texts)
}
