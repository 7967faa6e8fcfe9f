package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GatewaySender posts OTP messages to an HTTP SMS gateway.
type GatewaySender struct {
	URL       string
	APIKey    string
	SecretKey string
	client    *http.Client
}

type gatewayResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// NewGatewaySender creates a gateway client with a finite request timeout.
func NewGatewaySender(url, apiKey, secretKey string) *GatewaySender {
	return &GatewaySender{
		URL:       url,
		APIKey:    apiKey,
		SecretKey: secretKey,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *GatewaySender) SendOTP(ctx context.Context, mobile, code string) error {
	payload := map[string]interface{}{
		"phone":   mobile,
		"message": fmt.Sprintf("Your attendance verification code is %s. It expires in 5 minutes.", code),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode SMS payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api_key", s.APIKey)
	req.Header.Set("secret_key", s.SecretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("SMS gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("SMS gateway failed with status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var gwResp gatewayResponse
	if err := json.Unmarshal(respBody, &gwResp); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if gwResp.Code != "000" {
		return fmt.Errorf("SMS gateway error: %s", gwResp.Detail)
	}

	return nil
}
