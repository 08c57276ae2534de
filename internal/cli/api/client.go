// Package api is a typed client for the murmur REST API
package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/zfogg/murmur/internal/cli/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const userAgent = "Murmur-CLI/0.1.0"

// Error is a non-2xx response. Message comes from the {"error": ...} body.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.StatusCode, e.Message)
}

// IsUnauthorized checks if err is a 401
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if err is a 403
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsNotFound checks if err is a 404
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func hasStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Client talks to one murmur server
type Client struct {
	http *resty.Client
}

// New creates a client for baseURL
func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		// Logout answers with a redirect to the site; the CLI only needs the status
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))

	c.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP request", "method", req.Method, "url", req.URL)
		return nil
	})
	c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP response", "status", resp.StatusCode(), "duration", resp.Time())
		return nil
	})

	return &Client{http: c}
}

// SetToken authenticates later requests with a bearer token
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

func (c *Client) request() *resty.Request {
	return c.http.R().SetHeader("Accept", "application/json")
}

// check turns transport failures and non-2xx answers into errors
func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.StatusCode() < http.StatusBadRequest {
		return nil
	}

	var body struct {
		Error string `json:"error"`
	}
	msg := resp.Status()
	if json.Unmarshal(resp.Body(), &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &Error{StatusCode: resp.StatusCode(), Message: msg}
}

func (c *Client) get(path string, query map[string]string, result interface{}) error {
	resp, err := c.request().SetQueryParams(query).SetResult(result).Get(path)
	return check(resp, err)
}

func (c *Client) send(method, path string, body, result interface{}) error {
	req := c.request()
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	resp, err := req.Execute(method, path)
	return check(resp, err)
}
