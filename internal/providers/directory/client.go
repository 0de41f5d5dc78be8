package directory

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"crm-ad-sync/internal/domain"
	"crm-ad-sync/internal/httpx"
)

const (
	endpointPath = "/AppWebServices/UserManager.asmx"
	soapAction   = "http://schemas.microsoft.com/crm/2009/WebServices/RetrieveADUserProperties"
)

// requestTemplate is the fixed SOAP envelope the legacy UserManager service
// expects. Only the domain account name varies per call.
const requestTemplate = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema">
  <soap:Body>
    <RetrieveADUserProperties xmlns="http://schemas.microsoft.com/crm/2009/WebServices">
      <domainAccountName>%s</domainAccountName>
    </RetrieveADUserProperties>
  </soap:Body>
</soap:Envelope>`

type Client struct {
	BaseURL string
	HTTP    *http.Client

	// Optional basic auth. On-premise deployments often sit behind a gateway
	// that handles Windows auth, in which case both stay empty.
	BasicUser string
	BasicPass string
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// RetrieveUserProperties asks the directory service for the AD attributes of
// one domain account. A missing directory entry is an expected outcome and
// returns (nil, nil); callers decide whether to warn.
//
// The response nests a second XML document as escaped text inside the SOAP
// result field, so decoding happens in two stages: the envelope first, then
// the inner document.
func (c *Client) RetrieveUserProperties(ctx context.Context, domainAccountName string) (*domain.DirectoryUser, error) {
	reqBody := fmt.Sprintf(requestTemplate, xmlEscape(domainAccountName))

	var env resultEnvelope
	err := httpx.DoXML(
		ctx,
		c.HTTP,
		func(ctx context.Context) (*http.Request, error) {
			r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+endpointPath, strings.NewReader(reqBody))
			if err != nil {
				return nil, err
			}
			r.Header.Set("Accept", "application/xml, text/xml, */*")
			r.Header.Set("Content-Type", "text/xml; charset=utf-8")
			r.Header.Set("SOAPAction", soapAction)
			if c.BasicUser != "" {
				r.SetBasicAuth(c.BasicUser, c.BasicPass)
			}
			return r, nil
		},
		&env,
		httpx.DefaultRetryConfig(),
	)
	if err != nil {
		return nil, fmt.Errorf("directory: retrieve properties for %q failed: %w", domainAccountName, err)
	}

	inner := strings.TrimSpace(env.Body.Response.Result)
	if inner == "" {
		return nil, nil
	}

	user, found, err := parseUserDocument(inner)
	if err != nil {
		return nil, fmt.Errorf("directory: parse inner document for %q: %w", domainAccountName, err)
	}
	if !found {
		return nil, nil
	}
	return user, nil
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	// EscapeText only fails on a writer error; bytes.Buffer never errors.
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
