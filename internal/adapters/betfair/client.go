package betfair

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBettingBase = "https://api.betfair.com/exchange/betting/rest/v1.0"
	defaultAccountBase = "https://api.betfair.com/exchange/account/rest/v1.0"

	// Límite transaccional de Betfair: 5 req/s por app key. Operamos al
	// 60% para dejar margen al keep-alive y a los picos del minuto 75.
	requestsPerSec = 3

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client es el HTTP client del exchange con rate limiting, retries y el
// token de sesión compartido con el keep-alive (el último escritor gana).
type Client struct {
	http        *http.Client
	bettingBase string
	accountBase string
	appKey      string
	limiter     *rate.Limiter

	mu    sync.RWMutex
	token string
}

// NewClient crea un Client para la app key dada. Si bettingBase o
// accountBase están vacíos, usa los endpoints de producción.
func NewClient(appKey, bettingBase, accountBase string) *Client {
	if bettingBase == "" {
		bettingBase = defaultBettingBase
	}
	if accountBase == "" {
		accountBase = defaultAccountBase
	}
	return &Client{
		http:        &http.Client{Timeout: 30 * time.Second},
		bettingBase: bettingBase,
		accountBase: accountBase,
		appKey:      appKey,
		limiter:     rate.NewLimiter(requestsPerSec, 5),
	}
}

// SetToken actualiza el token de sesión tras un login o keep-alive.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token devuelve el token de sesión vigente.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// post hace un POST JSON-REST a la operación dada con rate limiting y
// retries. base es bettingBase o accountBase.
func (c *Client) post(ctx context.Context, base, operation string, body, out any) error {
	url := base + "/" + operation + "/"
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", operation, err)
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
		if err != nil {
			return err
		}
		req.Header.Set("X-Application", c.appKey)
		req.Header.Set("X-Authentication", c.Token())
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("%s failed after %d retries: %w", operation, maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			slog.Warn("rate limited by exchange", "operation", operation, "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		case resp.StatusCode >= 500:
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("%s: server error %d after %d retries", operation, resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		case resp.StatusCode == http.StatusUnauthorized:
			resp.Body.Close()
			return fmt.Errorf("%s: %w", operation, ErrSessionExpired)
		case resp.StatusCode >= 400:
			payload, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("%s: client error %d: %s", operation, resp.StatusCode, string(payload))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("%s: decode response: %w", operation, err)
		}
		return nil
	}
	return fmt.Errorf("%s: exhausted %d retries", operation, maxRetries)
}

func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
