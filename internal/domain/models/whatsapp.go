package models

// WebhookPayload is the subset of Meta's WhatsApp Cloud API callback body the
// command channel reads.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

// WebhookValue carries inbound messages. Delivery receipts arrive in the same
// envelope with Messages empty.
type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Messages         []InboundMessage `json:"messages"`
}

// InboundMessage is one message sent by a household member.
type InboundMessage struct {
	From        string              `json:"from"`
	ID          string              `json:"id"`
	Timestamp   string              `json:"timestamp"`
	Type        string              `json:"type"`
	Text        *TextContent        `json:"text,omitempty"`
	Interactive *InteractiveContent `json:"interactive,omitempty"`
}

type TextContent struct {
	Body string `json:"body"`
}

// InteractiveContent is a quick-reply button or list selection; its ID holds
// the command text.
type InteractiveContent struct {
	Type        string      `json:"type"`
	ButtonReply *ReplyEntry `json:"button_reply,omitempty"`
	ListReply   *ReplyEntry `json:"list_reply,omitempty"`
}

type ReplyEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Body returns the command text of the message, or "" for unsupported types.
func (m InboundMessage) Body() string {
	switch {
	case m.Text != nil:
		return m.Text.Body
	case m.Interactive != nil && m.Interactive.ButtonReply != nil:
		return m.Interactive.ButtonReply.ID
	case m.Interactive != nil && m.Interactive.ListReply != nil:
		return m.Interactive.ListReply.ID
	default:
		return ""
	}
}

// OutboundMessageRequest is a text pushed to one recipient.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}
