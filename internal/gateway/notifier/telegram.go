package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	sendAttempts = 3
	retryBackoff = time.Second
)

// Telegram pushes entry/exit alerts to a chat via the Bot API. BaseURL is
// overridable for tests.
type Telegram struct {
	BotToken string
	ChatID   string
	BaseURL  string
	Client   *http.Client
}

func NewTelegram(botToken, chatID string) *Telegram {
	return &Telegram{
		BotToken: botToken,
		ChatID:   chatID,
		BaseURL:  "https://api.telegram.org",
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// SendText posts a text message, retrying with linear backoff. The last
// error is returned when every attempt fails.
func (t *Telegram) SendText(text string) error {
	if t.BotToken == "" || t.ChatID == "" {
		return fmt.Errorf("telegram notifier not configured")
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.BaseURL, t.BotToken)
	body, _ := json.Marshal(map[string]any{
		"chat_id": t.ChatID,
		"text":    text,
	})

	var lastErr error
	for attempt := 0; attempt < sendAttempts; attempt++ {
		if lastErr = t.post(url, body); lastErr == nil {
			return nil
		}
		time.Sleep(time.Duration(attempt+1) * retryBackoff)
	}
	return lastErr
}

func (t *Telegram) post(url string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.Client.Do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("telegram status=%d", resp.StatusCode)
	}
	return nil
}
