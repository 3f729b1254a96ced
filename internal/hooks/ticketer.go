package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TicketClient talks to the external ticketing service over HTTP.
type TicketClient struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewTicketClient(baseURL, token string) *TicketClient {
	return &TicketClient{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type createTicketReq struct {
	Type    string `json:"type"`
	Subject string `json:"subject"`
	OrderID string `json:"order_id"`
}

type createTicketResp struct {
	TicketID string `json:"ticket_id"`
	Message  string `json:"message"`
}

func (c *TicketClient) CreateTicket(ctx context.Context, ticketType, subject, orderID string) (string, error) {
	body, err := json.Marshal(createTicketReq{Type: ticketType, Subject: subject, OrderID: orderID})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/tickets", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ticketing service returned %d: %s", resp.StatusCode, string(raw))
	}

	var out createTicketResp
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode ticket response: %w", err)
	}
	return out.TicketID, nil
}
