package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/household/internal/config"
)

func TestSendTextMessage(t *testing.T) {
	var got textPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v20.0/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer server.Close()

	client := NewClient(config.WhatsAppConfig{
		AccessToken:   "token",
		PhoneNumberID: "12345",
		BaseURL:       server.URL + "/",
		APIVersion:    "v20.0",
	})

	resp, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "224600000000", Body: "Milk owed: 800"})
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "wamid.1", resp.Messages[0].ID)

	assert.Equal(t, "whatsapp", got.MessagingProduct)
	assert.Equal(t, "224600000000", got.To)
	assert.Equal(t, "Milk owed: 800", got.Text.Body)
}

func TestSendTextMessage_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid parameter","code":100}}`))
	}))
	defer server.Close()

	client := NewClient(config.WhatsAppConfig{AccessToken: "t", PhoneNumberID: "1", BaseURL: server.URL, APIVersion: "v20.0"})

	_, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "1", Body: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code=100")
	assert.Contains(t, err.Error(), "Invalid parameter")
}

func TestSendTextMessage_EmptyRecipient(t *testing.T) {
	client := NewClient(config.WhatsAppConfig{BaseURL: "http://unused", APIVersion: "v20.0"})

	_, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{Body: "x"})
	assert.Error(t, err)
}
