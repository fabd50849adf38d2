package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const messageTypeText = "Text"

type ConversationService struct {
	client *Client
}

func (c *Client) Conversations() *ConversationService {
	return &ConversationService{client: c}
}

// SendMessage posts a text message to a messaging conversation on behalf of
// the given communication (the agent's leg of the conversation).
func (s *ConversationService) SendMessage(ctx context.Context, conversationID, communicationID, text string) (*Message, error) {
	if conversationID == "" || communicationID == "" {
		return nil, errors.New("conversation id and communication id are required")
	}
	endpoint := fmt.Sprintf("/api/v2/conversations/messages/%s/communications/%s/messages",
		url.PathEscape(conversationID), url.PathEscape(communicationID))
	var msg Message
	req := SendMessageRequest{TextBody: text, MessageType: messageTypeText}
	if err := s.client.do(ctx, http.MethodPost, endpoint, nil, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
