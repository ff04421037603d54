// Package captcha verifies client CAPTCHA tokens against an external
// verification endpoint.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"accounts-service/pkg/config"
)

// Verifier calls the configured CAPTCHA verification API. With no URL
// configured verification is disabled and every token passes.
type Verifier struct {
	verifyURL  string
	secret     string
	httpClient *http.Client
}

// NewVerifier creates a Verifier from configuration.
func NewVerifier(cfg *config.CaptchaConfig) *Verifier {
	return &Verifier{
		verifyURL:  cfg.VerifyURL,
		secret:     cfg.Secret,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// verifyResponse is the verification API's answer
type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes,omitempty"`
}

// Verify checks a CAPTCHA response token. The remote IP is forwarded when
// available.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if v.verifyURL == "" {
		return true, nil
	}

	data := url.Values{}
	data.Set("secret", v.secret)
	data.Set("response", token)
	if remoteIP != "" {
		data.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(data.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("captcha verification request failed: %d %s", resp.StatusCode, string(body))
	}

	var vr verifyResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return false, err
	}
	return vr.Success, nil
}
