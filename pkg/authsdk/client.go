package authsdk

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "Authorization"

// SDKClient is a client for the treasuremind authentication service. It keeps
// the session cookie in a cookie jar, so a successful Login authenticates
// every following call made through the same client.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client with its own cookie jar.
func NewSDKClient(baseURL string) *SDKClient {
	jar, _ := cookiejar.New(nil)
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// SessionToken returns the session cookie currently held by the client, or ""
// when there is none.
func (c *SDKClient) SessionToken() string {
	if c.HTTPClient.Jar == nil {
		return ""
	}
	u, err := url.Parse(c.BaseURL + "/api/auth")
	if err != nil {
		return ""
	}
	for _, ck := range c.HTTPClient.Jar.Cookies(u) {
		if ck.Name == SessionCookieName {
			return ck.Value
		}
	}
	return ""
}

// SetSessionToken replaces the session cookie held by the client. An empty
// token removes it.
func (c *SDKClient) SetSessionToken(token string) {
	if c.HTTPClient.Jar == nil {
		return
	}
	u, err := url.Parse(c.BaseURL + "/")
	if err != nil {
		return
	}
	ck := &http.Cookie{Name: SessionCookieName, Value: token, Path: "/"}
	if token == "" {
		ck.MaxAge = -1
	}
	c.HTTPClient.Jar.SetCookies(u, []*http.Cookie{ck})
}
