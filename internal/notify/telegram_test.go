package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tender-notifier/internal/common/errors"
	"tender-notifier/internal/tenders"
)

type botServer struct {
	mu       sync.Mutex
	forms    []map[string]string
	response string
}

func (b *botServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Tenders","username":"tender_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			require.NoError(t, r.ParseForm())
			form := map[string]string{}
			for k := range r.PostForm {
				form[k] = r.PostForm.Get(k)
			}
			b.mu.Lock()
			b.forms = append(b.forms, form)
			resp := b.response
			b.mu.Unlock()
			w.Write([]byte(resp))
		default:
			http.NotFound(w, r)
		}
	}
}

func newTestTelegram(t *testing.T, response string) (*Telegram, *botServer) {
	t.Helper()
	b := &botServer{response: response}
	srv := httptest.NewServer(b.handler(t))
	t.Cleanup(srv.Close)

	tg, err := NewTelegram("TOKEN", srv.URL+"/bot%s/%s", srv.Client())
	require.NoError(t, err)
	return tg, b
}

func TestTelegram_SendWithButton(t *testing.T) {
	tg, b := newTestTelegram(t, `{"ok":true,"result":{"message_id":5,"date":0,"chat":{"id":42,"type":"private"}}}`)

	err := tg.Send(context.Background(), tenders.Message{
		UserID: 42,
		Text:   "<b>Тендер</b>",
		Button: &tenders.Button{Text: "📎 Документы", Data: "show_sub_atts:t1"},
	})
	require.NoError(t, err)

	require.Len(t, b.forms, 1)
	form := b.forms[0]
	assert.Equal(t, "42", form["chat_id"])
	assert.Equal(t, "<b>Тендер</b>", form["text"])
	assert.Equal(t, "HTML", form["parse_mode"])
	assert.Equal(t, "true", form["disable_web_page_preview"])

	var markup struct {
		InlineKeyboard [][]struct {
			Text         string `json:"text"`
			CallbackData string `json:"callback_data"`
		} `json:"inline_keyboard"`
	}
	require.NoError(t, json.Unmarshal([]byte(form["reply_markup"]), &markup))
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, "show_sub_atts:t1", markup.InlineKeyboard[0][0].CallbackData)
}

func TestTelegram_FloodControl(t *testing.T) {
	tg, _ := newTestTelegram(t, `{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 7","parameters":{"retry_after":7}}`)

	err := tg.Send(context.Background(), tenders.Message{UserID: 42, Text: "x"})
	require.Error(t, err)

	wait, ok := errors.RetryAfter(err)
	assert.True(t, ok)
	assert.Equal(t, 7*time.Second, wait)
}

func TestTelegram_Rejected(t *testing.T) {
	tg, _ := newTestTelegram(t, `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`)

	err := tg.Send(context.Background(), tenders.Message{UserID: 42, Text: "x"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypePermanent))
	_, flood := errors.RetryAfter(err)
	assert.False(t, flood)
}

func TestTelegram_CancelledContext(t *testing.T) {
	tg, b := newTestTelegram(t, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, tg.Send(ctx, tenders.Message{UserID: 1, Text: "x"}), context.Canceled)
	assert.Empty(t, b.forms)
}

func TestNewTelegram_BadToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	}))
	defer srv.Close()

	_, err := NewTelegram("bad", srv.URL+"/bot%s/%s", srv.Client())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestLog_Send(t *testing.T) {
	assert.NoError(t, NewLog().Send(context.Background(), tenders.Message{
		UserID: 1, Text: "x", Button: &tenders.Button{Data: "show_sub_atts:t1"},
	}))
}
