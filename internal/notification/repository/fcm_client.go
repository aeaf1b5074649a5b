package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"social_network_service/internal/notification/domain"
	"social_network_service/pkg/config"
)

// PushClient sends one notification to a set of device tokens and reports
// which tokens the provider rejected as stale.
type PushClient interface {
	Send(ctx context.Context, tokens []string, notification domain.Notification) ([]string, error)
}

type fcmClient struct {
	endpoint  string
	serverKey string
	http      *http.Client
}

// NewFCMClient create a PushClient backed by the FCM HTTP API
func NewFCMClient(cfg config.FCMConfig) PushClient {
	return &fcmClient{
		endpoint:  cfg.Endpoint,
		serverKey: cfg.ServerKey,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

type fcmRequest struct {
	RegistrationIDs []string            `json:"registration_ids"`
	Notification    fcmNotification     `json:"notification"`
	Data            domain.Notification `json:"data"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	Results []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

func (c *fcmClient) Send(ctx context.Context, tokens []string, notification domain.Notification) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	payload := fcmRequest{
		RegistrationIDs: tokens,
		Notification: fcmNotification{
			Title: notification.Title,
			Body:  notification.Body,
		},
		Data: notification,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fcm send returned status %d", resp.StatusCode)
	}

	var parsed fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	var stale []string
	for i, result := range parsed.Results {
		if i >= len(tokens) {
			break
		}
		if result.Error == "NotRegistered" || result.Error == "InvalidRegistration" {
			stale = append(stale, tokens[i])
		}
	}

	return stale, nil
}
