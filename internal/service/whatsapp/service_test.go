package whatsapp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/household/internal/config"
	"github.com/mamadbah2/household/internal/domain/models"
	"github.com/mamadbah2/household/internal/service/commands"
	client "github.com/mamadbah2/household/pkg/clients/whatsapp"
)

type recordingClient struct {
	sent []client.SendTextMessageRequest
	err  error
}

func (r *recordingClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.sent = append(r.sent, req)
	return &client.SendTextMessageResponse{}, nil
}

type stubDispatcher struct {
	calls []models.Command
	reply string
	err   error
}

func (d *stubDispatcher) HandleCommand(_ context.Context, cmd models.Command, _ string) (string, error) {
	d.calls = append(d.calls, cmd)
	return d.reply, d.err
}

func payloadWith(messages ...models.InboundMessage) models.WebhookPayload {
	return models.WebhookPayload{
		Object: "whatsapp_business_account",
		Entry: []models.WebhookEntry{{
			Changes: []models.WebhookChange{{Field: "messages", Value: models.WebhookValue{Messages: messages}}},
		}},
	}
}

func text(id, from, body string) models.InboundMessage {
	return models.InboundMessage{ID: id, From: from, Type: "text", Text: &models.TextContent{Body: body}}
}

func TestVerifyWebhookToken(t *testing.T) {
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{VerifyToken: "secret"}, nil, &stubDispatcher{}, nil)

	challenge, err := svc.VerifyWebhookToken("subscribe", "secret", "1234")
	require.NoError(t, err)
	assert.Equal(t, "1234", challenge)

	_, err = svc.VerifyWebhookToken("subscribe", "wrong", "1234")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("unsubscribe", "secret", "1234")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("", "", "")
	assert.Error(t, err)
}

func TestHandleWebhook_DispatchesAndReplies(t *testing.T) {
	wa := &recordingClient{}
	d := &stubDispatcher{reply: "Delivery saved"}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, d, nil)

	err := svc.HandleWebhook(context.Background(), payloadWith(text("wamid.1", "224600000001", "/delivered milk 2")))
	require.NoError(t, err)

	require.Len(t, d.calls, 1)
	assert.Equal(t, models.CommandDelivered, d.calls[0].Type)
	require.Len(t, wa.sent, 1)
	assert.Equal(t, "224600000001", wa.sent[0].To)
	assert.Equal(t, "Delivery saved", wa.sent[0].Body)
}

func TestHandleWebhook_SkipsRedeliveredMessages(t *testing.T) {
	wa := &recordingClient{}
	d := &stubDispatcher{reply: "ok"}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, d, nil)
	msg := text("wamid.dup", "1", "/delivered water 1")

	require.NoError(t, svc.HandleWebhook(context.Background(), payloadWith(msg)))
	require.NoError(t, svc.HandleWebhook(context.Background(), payloadWith(msg)))

	assert.Len(t, d.calls, 1)
	assert.Len(t, wa.sent, 1)
}

func TestHandleWebhook_RejectedCommandGetsExplanation(t *testing.T) {
	wa := &recordingClient{}
	d := &stubDispatcher{err: commands.ErrInvalidArguments}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, d, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), payloadWith(text("a", "1", "/delivered"))))

	require.Len(t, wa.sent, 1)
	assert.Contains(t, wa.sent[0].Body, "did not understand")
}

func TestHandleWebhook_IgnoresUnknownSenders(t *testing.T) {
	wa := &recordingClient{}
	d := &stubDispatcher{}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{AllowedSenders: []string{"224600000001"}}, wa, d, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), payloadWith(text("a", "999", "/paid milk 100"))))

	assert.Empty(t, d.calls)
	assert.Empty(t, wa.sent)
}

func TestHandleWebhook_ButtonReplyAndUsage(t *testing.T) {
	wa := &recordingClient{}
	d := &stubDispatcher{reply: "balance"}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, d, nil)

	button := models.InboundMessage{
		ID: "b", From: "1", Type: "interactive",
		Interactive: &models.InteractiveContent{ButtonReply: &models.ReplyEntry{ID: "/balance", Title: "Balance"}},
	}
	image := models.InboundMessage{ID: "i", From: "1", Type: "image"}

	require.NoError(t, svc.HandleWebhook(context.Background(), payloadWith(button, image)))

	require.Len(t, d.calls, 1)
	assert.Equal(t, models.CommandBalance, d.calls[0].Type)
	require.Len(t, wa.sent, 2)
	assert.Equal(t, commands.Usage, wa.sent[1].Body)
}

func TestHandleWebhook_ReturnsSendFailure(t *testing.T) {
	wa := &recordingClient{err: errors.New("meta down")}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, &stubDispatcher{reply: "ok"}, nil)

	err := svc.HandleWebhook(context.Background(), payloadWith(text("x", "1", "/balance")))
	assert.Error(t, err)
}

func TestSendOutbound(t *testing.T) {
	wa := &recordingClient{}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, &stubDispatcher{}, nil)

	require.NoError(t, svc.SendOutbound(context.Background(), models.OutboundMessageRequest{To: "1", Message: "Order milk"}))
	require.Len(t, wa.sent, 1)
	assert.Equal(t, "Order milk", wa.sent[0].Body)

	disabled := NewMetaWhatsAppService(config.WhatsAppConfig{}, nil, &stubDispatcher{}, nil)
	assert.ErrorIs(t, disabled.SendOutbound(context.Background(), models.OutboundMessageRequest{To: "1", Message: "x"}), ErrDisabled)
}

func TestSeenMessages_Expire(t *testing.T) {
	seen := newSeenMessages(50 * time.Millisecond)

	assert.True(t, seen.markNew("a"))
	assert.False(t, seen.markNew("a"))
	assert.True(t, seen.markNew("b"))

	assert.Eventually(t, func() bool {
		return seen.markNew("a")
	}, time.Second, 10*time.Millisecond)
}
