package zenapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/c9s/requestgen"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/abel123/zeus/pkg/types"
)

const defaultHTTPTimeout = time.Second * 15

const DefaultBaseURL = "http://127.0.0.1:8000"

// HistoricalOnlyHeader asks the analytics service to ignore realtime bars.
const HistoricalOnlyHeader = "X-Zen-Historical-Only"

// StatusError is returned when the analytics service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("analytics service returned status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the same request may succeed later.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// IsTemporary reports whether err is worth retrying. Transport failures are.
func IsTemporary(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}

	return !errors.Is(err, types.ErrInvalidIndicatorConfig)
}

// RestClient talks to the Zen analytics service.
type RestClient struct {
	requestgen.BaseAPIClient

	limiter *rate.Limiter
}

func NewClient(baseURL string) (*RestClient, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid analytics base url %q", baseURL)
	}

	return &RestClient{
		BaseAPIClient: requestgen.BaseAPIClient{
			BaseURL: u,
			HttpClient: &http.Client{
				Timeout: defaultHTTPTimeout,
			},
		},
	}, nil
}

func (c *RestClient) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		c.HttpClient.Timeout = timeout
	}
}

// SetRateLimiter throttles outgoing requests. A nil limiter disables throttling.
func (c *RestClient) SetRateLimiter(limiter *rate.Limiter) {
	c.limiter = limiter
}

// NewRequest builds a JSON request, waiting on the rate limiter first.
func (c *RestClient) NewRequest(ctx context.Context, method, refURL string, params url.Values, payload interface{}) (*http.Request, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "rate limiter wait")
		}
	}

	req, err := c.BaseAPIClient.NewRequest(ctx, method, refURL, params, payload)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// SendRequest sends req and turns a non-2xx answer into a *StatusError.
func (c *RestClient) SendRequest(req *http.Request) (*requestgen.Response, error) {
	response, err := c.BaseAPIClient.SendRequest(req)
	if err != nil {
		var errResp *requestgen.ErrResponse
		if errors.As(err, &errResp) {
			return response, errors.WithStack(&StatusError{
				StatusCode: errResp.Response.StatusCode,
				Body:       string(errResp.Body),
			})
		}

		return response, err
	}

	return response, nil
}

type historicalOnlyClient struct {
	*RestClient
}

func (c *historicalOnlyClient) NewRequest(ctx context.Context, method, refURL string, params url.Values, payload interface{}) (*http.Request, error) {
	req, err := c.RestClient.NewRequest(ctx, method, refURL, params, payload)
	if err != nil {
		return nil, err
	}

	req.Header.Set(HistoricalOnlyHeader, "1")
	return req, nil
}

// FetchAnnotations issues one elements request for the given window.
func (c *RestClient) FetchAnnotations(ctx context.Context, request types.AnnotationRequest, historicalOnly bool) (*types.AnnotationPayload, error) {
	if err := validateIndicators(request.Indicators); err != nil {
		return nil, err
	}

	indicators := request.Indicators
	if indicators == nil {
		indicators = []types.IndicatorConfig{}
	}

	req := c.NewGetElementsRequest()
	if historicalOnly {
		req = c.NewHistoricalGetElementsRequest()
	}

	payload, err := req.
		From(request.From).
		To(request.To).
		Symbol(request.Symbol).
		Resolution(request.Resolution).
		Indicators(indicators).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "elements request failed")
	}

	return payload, nil
}
