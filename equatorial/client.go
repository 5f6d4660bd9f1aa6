package equatorial

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL      = "https://api-pa-cliente.equatorialenergia.com.br"
	DefaultClientID     = "cemar"
	DefaultClientSecret = "Eqt@Cemar"
	DefaultUserAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.14; rv:75.0) Gecko/20100101 Firefox/75.0"
	DefaultTimeout      = 60 * time.Second

	TokenPath    = "/auth/connect/token"
	DebitosPath  = "/api/v1/debitos/"
	SegundaVia   = "/api/v1/faturas/segunda-via/"
	usernamePref = "1:"
)

// Endpoints is the upstream route table. It is built once per run and
// handed to NewClient; the client never mutates it.
type Endpoints struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	UserAgent    string
	Timeout      time.Duration
}

// DefaultEndpoints returns the production route table.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		BaseURL:      DefaultBaseURL,
		ClientID:     DefaultClientID,
		ClientSecret: DefaultClientSecret,
		UserAgent:    DefaultUserAgent,
		Timeout:      DefaultTimeout,
	}
}

func (e Endpoints) url(path string) string {
	return strings.TrimRight(e.BaseURL, "/") + path
}

// basicAuth is the shared client credential the token endpoint expects.
func (e Endpoints) basicAuth() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(e.ClientID+":"+e.ClientSecret))
}

// Progress is notified around every blocking upstream call.
type Progress interface {
	Start(label string)
	Stop()
}

type noProgress struct{}

func (noProgress) Start(string) {}
func (noProgress) Stop()        {}

type Client struct {
	Endpoints  Endpoints
	HTTPClient *http.Client
	Progress   Progress
	Debug      bool
}

// Credentials identify the account holder. Identifier is the CPF and Secret
// the holder's birth date.
type Credentials struct {
	Identifier string
	Secret     string
}

// Token is the token endpoint response, kept as returned.
type Token struct {
	TokenType   string `json:"token_type"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

// Authorization renders the header value used on authenticated calls.
func (t Token) Authorization() string {
	return t.TokenType + " " + t.AccessToken
}

func NewClient(endpoints Endpoints) *Client {
	timeout := endpoints.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		Endpoints:  endpoints,
		HTTPClient: &http.Client{Timeout: timeout},
		Progress:   noProgress{},
	}
}

func (c *Client) SetDebug(debug bool) {
	c.Debug = debug
}

// NewTokenRequestBody builds the password grant form. Only the two credential
// fields vary between calls.
func NewTokenRequestBody(creds Credentials) url.Values {
	data := url.Values{}
	data.Set("grant_type", "password")
	data.Set("username", usernamePref+creds.Identifier)
	data.Set("password", creds.Secret)
	data.Set("navegador", "browser")
	data.Set("dispositivo", "device")
	data.Set("empresaId", "+")
	return data
}

// Authenticate exchanges the credentials for a bearer token. A 200 body is
// decoded as is; missing fields only surface when the token is used. Any
// other status fails with ErrAuth carrying the response body.
func (c *Client) Authenticate(ctx context.Context, creds Credentials) (Token, error) {
	if creds.Identifier == "" || creds.Secret == "" {
		return Token{}, fmt.Errorf("%w: identifier and birth date are required", ErrValidation)
	}
	if c.Debug {
		log.Debug("Authenticating...")
	}

	body := NewTokenRequestBody(creds)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoints.url(TokenPath), strings.NewReader(body.Encode()))
	if err != nil {
		return Token{}, err
	}
	req.Header.Add("Authorization", c.Endpoints.basicAuth())
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(req, "Autenticando")
	if err != nil {
		return Token{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, fmt.Errorf("%w: reading token response: %v", ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		return Token{}, fmt.Errorf("%w: status %d: %s", ErrAuth, resp.StatusCode, string(data))
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return Token{}, fmt.Errorf("%w: token response: %v", ErrParse, err)
	}

	if c.Debug {
		log.Debug("Authenticated successfully.")
	}
	return token, nil
}

// do sends req wrapped in the progress hook. Transport failures are reported
// as ErrNetwork; the response is returned whatever its status.
func (c *Client) do(req *http.Request, label string) (*http.Response, error) {
	if c.Endpoints.UserAgent != "" {
		req.Header.Set("User-Agent", c.Endpoints.UserAgent)
	}
	if c.Debug {
		log.Debugf("Request: %s %s", req.Method, req.URL)
	}

	progress := c.Progress
	if progress == nil {
		progress = noProgress{}
	}
	progress.Start(label)
	resp, err := c.HTTPClient.Do(req)
	progress.Stop()
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrNetwork, req.Method, req.URL.Path, err)
	}
	if c.Debug {
		log.Debugf("Response: %s %s", resp.Status, resp.Header.Get("Content-Type"))
	}
	return resp, nil
}

// getJSON issues an authenticated or anonymous GET and decodes the body into v.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, token *Token, label string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoints.url(endpoint), nil)
	if err != nil {
		return err
	}
	if params != nil {
		req.URL.RawQuery = params.Encode()
	}
	if token != nil {
		req.Header.Add("Authorization", token.Authorization())
	}

	resp, err := c.do(req, label)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrNetwork, endpoint, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s (status %d): %v", ErrParse, endpoint, resp.StatusCode, err)
	}
	return nil
}
