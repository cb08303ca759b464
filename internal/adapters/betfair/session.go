package betfair

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultIdentityBase = "https://identitysso.betfair.it/api"

// Session gestiona el login y el keep-alive contra el SSO del exchange.
// El token resultante se escribe en el Client compartido; si el keep-alive
// y un re-login compiten, el último escritor gana.
type Session struct {
	http         *http.Client
	identityBase string
	appKey       string
	username     string
	password     string
	client       *Client
}

// NewSession crea la sesión para el Client dado. Si identityBase está
// vacío usa el SSO de producción.
func NewSession(client *Client, username, password, identityBase string) *Session {
	if identityBase == "" {
		identityBase = defaultIdentityBase
	}
	return &Session{
		http:         &http.Client{Timeout: 15 * time.Second},
		identityBase: strings.TrimRight(identityBase, "/"),
		appKey:       client.appKey,
		username:     username,
		password:     password,
		client:       client,
	}
}

// Login autentica con usuario y contraseña y guarda el token de sesión.
func (s *Session) Login(ctx context.Context) error {
	form := url.Values{}
	form.Set("username", s.username)
	form.Set("password", s.password)

	resp, err := s.identityPost(ctx, "/login", form.Encode(), "application/x-www-form-urlencoded")
	if err != nil {
		return fmt.Errorf("betfair.Login: %w", err)
	}
	if resp.Status != "SUCCESS" || resp.Token == "" {
		return fmt.Errorf("betfair.Login: rejected: %s (%s)", resp.Status, resp.Error)
	}

	s.client.SetToken(resp.Token)
	slog.Info("exchange session established", "product", resp.Product)
	return nil
}

// KeepAlive refresca el token antes de que caduque. El SSO puede rotar el
// token en la respuesta; si lo hace, se adopta el nuevo.
func (s *Session) KeepAlive(ctx context.Context) error {
	resp, err := s.identityPost(ctx, "/keepAlive", "", "")
	if err != nil {
		return fmt.Errorf("betfair.KeepAlive: %w", err)
	}
	if resp.Status != "SUCCESS" {
		return fmt.Errorf("betfair.KeepAlive: rejected: %s (%s): %w", resp.Status, resp.Error, ErrSessionExpired)
	}

	if resp.Token != "" {
		s.client.SetToken(resp.Token)
	}
	slog.Debug("exchange session refreshed")
	return nil
}

func (s *Session) identityPost(ctx context.Context, path, body, contentType string) (identityResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.identityBase+path, strings.NewReader(body))
	if err != nil {
		return identityResponse{}, err
	}
	req.Header.Set("X-Application", s.appKey)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := s.client.Token(); token != "" {
		req.Header.Set("X-Authentication", token)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return identityResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return identityResponse{}, fmt.Errorf("sso status %d", resp.StatusCode)
	}

	var out identityResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return identityResponse{}, fmt.Errorf("decode sso response: %w", err)
	}
	return out, nil
}
