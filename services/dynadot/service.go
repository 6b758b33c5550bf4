package dynadot

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	"golang.org/x/net/context"

	"github.com/nametracker/nametracker/config"
	"github.com/nametracker/nametracker/interfaces"
	"github.com/nametracker/nametracker/internal/enum"
	er "github.com/nametracker/nametracker/internal/errors"
	"github.com/nametracker/nametracker/internal/metrics"
	"github.com/nametracker/nametracker/internal/tracing"
)

// Dynadot API reference: https://www.dynadot.com/domain/api3.html
type dynadotService struct {
	cfg        *config.DynadotConfig
	httpClient *http.Client
	wait       func(time.Duration)
}

func NewDynadotService(cfg *config.DynadotConfig) interfaces.DynadotService {
	return &dynadotService{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		wait: time.Sleep,
	}
}

func (s *dynadotService) BatchCap() int {
	return s.cfg.BatchCap
}

// searchResponse is the subset of the Dynadot search payload we consume.
// Available is a tri-state: true, false, or absent/null.
type searchResponse struct {
	SearchResults []struct {
		Domain    string `json:"domain"`
		Available *bool  `json:"available"`
	} `json:"SearchResult"`
}

// CheckBulkAvailability checks up to BatchCap domains in one provider call,
// retrying transient failures with a fixed wait before giving up.
func (s *dynadotService) CheckBulkAvailability(ctx context.Context, domains []string) (map[string]enum.Availability, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DynadotService.CheckBulkAvailability")
	defer span.Finish()
	tracing.TagComponentService(span)
	span.LogFields(tracingLog.Int("request.domains", len(domains)))

	if s.cfg.ApiKey == "" {
		err := errors.New("Dynadot API configuration is missing")
		tracing.TraceErr(span, err)
		return nil, err
	}
	if len(domains) == 0 {
		return map[string]enum.Availability{}, nil
	}
	if len(domains) > s.cfg.BatchCap {
		tracing.TraceErr(span, er.ErrBatchTooLarge)
		return nil, er.ErrBatchTooLarge
	}

	params := url.Values{}
	params.Add("key", s.cfg.ApiKey)
	params.Add("command", "search")
	params.Add("domain", strings.Join(domains, ","))

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		metrics.ProviderCalls.Inc()

		body, err := s.doSearch(ctx, params)
		if err == nil {
			return s.mapAvailability(span, body, domains)
		}
		if !isTransient(err) {
			tracing.TraceErr(span, err)
			return nil, err
		}

		lastErr = err
		span.LogFields(
			tracingLog.Int("attempt", attempt),
			tracingLog.String("transientError", err.Error()),
		)
		if attempt < s.cfg.MaxAttempts {
			s.wait(s.cfg.RetryWait)
		}
	}

	metrics.ProviderFailures.Inc()
	err := errors.Wrapf(er.ErrProviderUnavailable, "after %d attempts: %v", s.cfg.MaxAttempts, lastErr)
	tracing.TraceErr(span, err)
	return nil, err
}

func (s *dynadotService) doSearch(ctx context.Context, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Url+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build Dynadot request")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, transientError{errors.Wrap(err, "failed to call Dynadot API")}
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transientError{errors.Wrap(err, "failed to read Dynadot response")}
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, transientError{errors.Errorf("Dynadot API returned status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("Dynadot API returned status %d: %s", resp.StatusCode, string(responseBody))
	}

	return responseBody, nil
}

func (s *dynadotService) mapAvailability(span opentracing.Span, body []byte, requested []string) (map[string]enum.Availability, error) {
	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		err = errors.Wrap(err, "failed to parse Dynadot response")
		tracing.TraceErr(span, err)
		return nil, err
	}

	availability := make(map[string]enum.Availability, len(requested))
	for _, entry := range result.SearchResults {
		name := strings.ToLower(strings.TrimSpace(entry.Domain))
		if name == "" {
			continue
		}
		switch {
		case entry.Available == nil:
			availability[name] = enum.AvailabilityUnknown
		case *entry.Available:
			availability[name] = enum.AvailabilityAvailable
		default:
			availability[name] = enum.AvailabilityTaken
		}
	}

	// anything the provider did not echo back counts as unknown
	for _, name := range requested {
		key := strings.ToLower(name)
		if _, ok := availability[key]; !ok {
			availability[key] = enum.AvailabilityUnknown
		}
	}

	span.LogFields(tracingLog.Int("response.domains", len(availability)))
	return availability, nil
}

// transientError marks failures worth retrying: transport errors and 5xx.
type transientError struct {
	error
}

func (e transientError) Unwrap() error {
	return e.error
}

func isTransient(err error) bool {
	var t transientError
	return errors.As(err, &t)
}
