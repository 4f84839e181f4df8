package backend

import (
	"context"
	"net/http"
)

type ChatReply struct {
	Reply    string `json:"reply"`
	Escalate bool   `json:"escalate"`
}

// Ask forwards one support-chat message. userID is 0 for anonymous
// visitors.
func (c *Client) Ask(ctx context.Context, message string, userID int64) (*ChatReply, error) {
	var reply ChatReply
	err := c.do(ctx, http.MethodPost, "/Chat/Ask", nil, "", map[string]interface{}{
		"message": message,
		"userId":  userID,
	}, &reply)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// SendContact submits the contact form. Field casing follows the backend's
// contract.
func (c *Client) SendContact(ctx context.Context, name, email, message string) error {
	return c.do(ctx, http.MethodPost, "/Contact/Send", nil, "", map[string]string{
		"Name":    name,
		"Email":   email,
		"Message": message,
	}, nil)
}
