package dynamics

import (
	"net/http"
	"strings"
	"time"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	acceptJSON      = "application/json"

	// Dynamics on-premise Web API version this integration targets.
	apiPath = "/api/data/v8.2"
)

type Client struct {
	BaseURL     string
	HTTP        *http.Client
	BearerToken string
}

func New(baseURL string) *Client {
	tr := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout:   2 * time.Minute,
			Transport: tr,
		},
	}
}

// setODataHeaders applies the header set the on-premise Web API expects on
// every call. The bearer token is optional: on-premise deployments behind
// Windows auth proxies may inject credentials at the gateway instead.
func (c *Client) setODataHeaders(r *http.Request) {
	r.Header.Set("Accept", acceptJSON)
	r.Header.Set("Content-Type", contentTypeJSON)
	r.Header.Set("OData-MaxVersion", "4.0")
	r.Header.Set("OData-Version", "4.0")
	if c.BearerToken != "" {
		r.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
}
