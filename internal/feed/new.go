package feed

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	DefaultBaseURL = "https://api.sitwatch.net/api"
	DefaultTimeout = 10 * time.Second
)

// ClientConfig configures NewClient. Zero values fall back to the defaults.
type ClientConfig struct {
	BaseURL       string
	Token         string
	Timeout       time.Duration
	OnTokenChange TokenChangeFunc
	HTTPClient    *http.Client
}

type implClient struct {
	httpClient    *http.Client
	onTokenChange TokenChangeFunc

	mu      sync.RWMutex
	baseURL string
	token   string
}

// NewClient creates a REST-backed Client.
func NewClient(cfg ClientConfig) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &implClient{
		httpClient:    httpClient,
		onTokenChange: cfg.OnTokenChange,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
	}

	if cfg.Token != "" {
		c.SetToken(cfg.Token)
	}

	return c
}
