package dynamics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"crm-ad-sync/internal/domain"
	"crm-ad-sync/internal/httpx"
)

type listUsersResponse struct {
	Value []struct {
		DomainName   string `json:"domainname"`
		SystemUserID string `json:"systemuserid"`
	} `json:"value"`
}

// ListEnabledUsers returns every enabled systemuser that has a non-empty
// domain account name, in server order. Any failure here is fatal to the
// run: without the list there is nothing to isolate per record.
func (c *Client) ListEnabledUsers(ctx context.Context) ([]domain.CRMUser, error) {
	u, err := url.Parse(c.BaseURL + apiPath + "/systemusers/")
	if err != nil {
		return nil, fmt.Errorf("dynamics: invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("$select", "domainname")
	q.Set("$filter", "isdisabled eq false and domainname ne ''")
	u.RawQuery = q.Encode()

	var out listUsersResponse
	err = httpx.DoJSON(
		ctx,
		c.HTTP,
		func(ctx context.Context) (*http.Request, error) {
			r, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
			if err != nil {
				return nil, err
			}
			c.setODataHeaders(r)
			return r, nil
		},
		&out,
		httpx.DefaultRetryConfig(),
	)
	if err != nil {
		return nil, fmt.Errorf("dynamics: list users failed: %w", err)
	}

	users := make([]domain.CRMUser, 0, len(out.Value))
	for _, v := range out.Value {
		users = append(users, domain.CRMUser{
			ID:         v.SystemUserID,
			DomainName: v.DomainName,
		})
	}
	return users, nil
}

// UpdateUser issues a partial update against systemusers({id}). The Web API
// signals success with 204 No Content; anything else is an error. The PATCH
// is sent exactly once: a duplicate write after an ambiguous failure is
// worse than a logged error, so no transport retry here.
func (c *Client) UpdateUser(ctx context.Context, id string, payload map[string]string) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("dynamics: marshal update payload: %w", err)
	}

	resp, body, err := httpx.DoWithRetry(
		ctx,
		c.HTTP,
		func(ctx context.Context) (*http.Request, error) {
			r, err := http.NewRequestWithContext(ctx, http.MethodPatch, fmt.Sprintf("%s%s/systemusers(%s)", c.BaseURL, apiPath, id), bytes.NewReader(b))
			if err != nil {
				return nil, err
			}
			c.setODataHeaders(r)
			return r, nil
		},
		httpx.NoRetryConfig(),
	)
	if err != nil {
		return fmt.Errorf("dynamics: update user failed: %w", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("dynamics: update user: unexpected status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
