// Package salesapi provides a client for the remote sales-operations backend:
// lead retrieval, predictive scoring, use-case matching, and the AI email
// generation/delivery endpoints.
package salesapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Client defines the backend operations consumed by the dashboard core.
type Client interface {
	// Leads returns all lead records known to the backend.
	Leads(ctx context.Context) ([]Lead, error)
	// UseCases returns the curated use-case catalog.
	UseCases(ctx context.Context) ([]UseCase, error)
	// MatchUseCase asks the backend to match a lead profile to a use case.
	MatchUseCase(ctx context.Context, in LeadInput) (*MatchResult, error)
	// PredictScore runs the remote scoring model over a lead profile.
	PredictScore(ctx context.Context, in LeadInput) (*ScorePrediction, error)
	// GenerateEmail produces a personalized outbound email body.
	GenerateEmail(ctx context.Context, in EmailRequest) (*EmailResponse, error)
	// SendEmail generates and delivers an email through the backend's provider.
	SendEmail(ctx context.Context, in SendRequest) (*SendResponse, error)
}

// Lead is the wire shape of a lead record. Score fields are pointers because
// the backend omits them for unscored leads.
type Lead struct {
	CompanyName           string   `json:"company_name"`
	QuoteValue            float64  `json:"quote_value"`
	ItemCount             int      `json:"item_count"`
	ConversionDays        int      `json:"conversion_days"`
	LeadScore             *float64 `json:"lead_score,omitempty"`
	ConversionProbability *float64 `json:"conversion_probability,omitempty"`
	Industry              string   `json:"industry,omitempty"`
	Segment               string   `json:"segment,omitempty"`
	MaturityLevel         string   `json:"maturity_level,omitempty"`
}

// UseCase is an externally curated success-story playbook. Immutable once
// received; the core consumes it read-only.
type UseCase struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Industry         string   `json:"industry"`
	PainPoints       []string `json:"pain_points"`
	SolutionSummary  string   `json:"solution_summary"`
	SuccessMetrics   string   `json:"success_metrics,omitempty"`
	CustomerType     string   `json:"customer_type,omitempty"`
	RelevantSegments []string `json:"relevant_segments"`
}

// MatchResult pairs a lead profile with its recommended use case. Computed
// entirely by the backend; displayed as-is.
type MatchResult struct {
	RecommendedUseCase UseCase `json:"recommended_use_case"`
	SegmentAssigned    string  `json:"segment_assigned"`
	MaturityLevel      string  `json:"maturity_level"`
	IndustryDetected   string  `json:"industry_detected"`
}

// LeadInput is the request shape for scoring and matching.
type LeadInput struct {
	QuoteValue     float64 `json:"quote_value"`
	ItemCount      int     `json:"item_count"`
	ConversionDays int     `json:"conversion_days"`
	CompanyName    string  `json:"company_name,omitempty"`
}

// ScorePrediction is the remote model's output for a lead profile.
type ScorePrediction struct {
	LeadScore             float64 `json:"lead_score"`
	ConversionProbability float64 `json:"conversion_probability"`
}

// EmailRequest asks the backend to generate a personalized email body.
type EmailRequest struct {
	CustomerName string  `json:"customer_name"`
	LeadScore    float64 `json:"lead_score"`
	QuoteValue   float64 `json:"quote_value"`
	ItemCount    int     `json:"item_count"`
	UseCaseID    string  `json:"use_case_id,omitempty"`
}

// EmailResponse holds a generated email body.
type EmailResponse struct {
	EmailBody string `json:"email_body"`
}

// SendRequest asks the backend to generate and deliver an email.
type SendRequest struct {
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	LeadScore     float64 `json:"lead_score"`
	QuoteValue    float64 `json:"quote_value"`
	ItemCount     int     `json:"item_count"`
	Subject       string  `json:"subject,omitempty"`
}

// SendResponse reports the delivery outcome. Success=false carries the
// provider's message; callers treat it the same as a transport failure.
type SendResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	EmailBody string `json:"email_body"`
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes an HTTP request with exponential backoff retries on
// transient failures (429, 500, 502, 503). Returns the response body and
// status code on success, or the last error after exhausting retries.
func (c *httpClient) retryDo(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, 0, eris.Wrap(err, "salesapi: marshal request")
		}
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, 0, eris.Wrap(err, "salesapi: create request")
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, eris.Wrapf(lastErr, "salesapi: %s %s", method, path)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "salesapi: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("salesapi: status %d: %s", resp.StatusCode, string(respBody))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return respBody, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

// decodeCollection decodes a JSON array into out. A well-formed but non-array
// payload is logged and treated as an empty collection rather than an error,
// so a misbehaving backend cannot take the dashboard down.
func decodeCollection[T any](path string, body []byte) ([]T, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, eris.Wrapf(err, "salesapi: decode %s response", path)
	}

	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '[' {
		zap.L().Warn("salesapi: expected array response, treating as empty",
			zap.String("path", path),
			zap.Int("bytes", len(body)),
		)
		return []T{}, nil
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, eris.Wrapf(err, "salesapi: decode %s response", path)
	}
	return out, nil
}

func (c *httpClient) getCollection(ctx context.Context, path string) ([]byte, error) {
	body, status, err := c.retryDo(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("salesapi: GET %s: status %d: %s", path, status, string(body))
	}
	return body, nil
}

func (c *httpClient) Leads(ctx context.Context) ([]Lead, error) {
	body, err := c.getCollection(ctx, "/leads")
	if err != nil {
		return nil, err
	}
	return decodeCollection[Lead]("/leads", body)
}

func (c *httpClient) UseCases(ctx context.Context) ([]UseCase, error) {
	body, err := c.getCollection(ctx, "/use-cases")
	if err != nil {
		return nil, err
	}
	return decodeCollection[UseCase]("/use-cases", body)
}

// postJSON executes a POST and decodes the 200 response into out.
func (c *httpClient) postJSON(ctx context.Context, path string, payload, out any) error {
	body, status, err := c.retryDo(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return eris.Errorf("salesapi: POST %s: status %d: %s", path, status, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "salesapi: decode %s response", path)
	}
	return nil
}

func (c *httpClient) MatchUseCase(ctx context.Context, in LeadInput) (*MatchResult, error) {
	var out MatchResult
	if err := c.postJSON(ctx, "/match-use-case", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) PredictScore(ctx context.Context, in LeadInput) (*ScorePrediction, error) {
	var out ScorePrediction
	if err := c.postJSON(ctx, "/predict", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) GenerateEmail(ctx context.Context, in EmailRequest) (*EmailResponse, error) {
	var out EmailResponse
	if err := c.postJSON(ctx, "/generate-email-llama2", in, &out); err != nil {
		return nil, err
	}
	if out.EmailBody == "" {
		return nil, eris.New("salesapi: generator returned an empty email body")
	}
	return &out, nil
}

func (c *httpClient) SendEmail(ctx context.Context, in SendRequest) (*SendResponse, error) {
	var out SendResponse
	if err := c.postJSON(ctx, "/send-email", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
