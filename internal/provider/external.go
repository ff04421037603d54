package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"accounts-service/internal/model"
	"accounts-service/pkg/config"
)

// externalProvider talks to a remote auth service over HTTP. Credential
// validation already happened locally, so sign-in uses a trusted
// server-to-server endpoint authenticated by API key.
type externalProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newExternalProvider(cfg *config.ProviderConfig) *externalProvider {
	return &externalProvider{
		baseURL:    cfg.ExternalBaseURL,
		apiKey:     cfg.ExternalAPIKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// sessionResponse is the remote service's session payload
type sessionResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// errorResponse is the remote service's error payload
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (p *externalProvider) Name() string { return NameExternal }

func (p *externalProvider) SignIn(ctx context.Context, user *model.User) (*Session, error) {
	var resp sessionResponse
	err := p.post(ctx, "/auth/sessions", map[string]interface{}{
		"email":   user.Email,
		"user_id": user.ID,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &Session{Token: resp.AccessToken, ExpiresAt: resp.ExpiresAt}, nil
}

func (p *externalProvider) SignUp(ctx context.Context, email, password string) error {
	return p.post(ctx, "/auth/users", map[string]interface{}{
		"email":    email,
		"password": password,
	}, nil)
}

func (p *externalProvider) SignOut(ctx context.Context, token string) error {
	return p.post(ctx, "/auth/sign-out", map[string]interface{}{
		"token": token,
	}, nil)
}

func (p *externalProvider) OAuthURL(social, redirectTo string) (string, error) {
	if p.baseURL == "" {
		return "", ErrOAuthUnsupported
	}

	q := url.Values{}
	q.Set("provider", social)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return fmt.Sprintf("%s/auth/authorize?%s", p.baseURL, q.Encode()), nil
}

// post sends a JSON request and decodes the response into out when non-nil
func (p *externalProvider) post(ctx context.Context, path string, payload map[string]interface{}, out interface{}) error {
	if p.baseURL == "" {
		return fmt.Errorf("external auth provider not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil || errResp.Error == "" {
			return fmt.Errorf("external auth request failed: %d %s", resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("external auth request failed: %s - %s", errResp.Error, errResp.ErrorDescription)
	}

	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}
