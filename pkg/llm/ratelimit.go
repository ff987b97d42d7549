package llm

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/agentwizard/pkg/domain"
)

var rateLimitPhrases = []string{
	"rate limit",
	"too many requests",
	"would exceed your organization's rate limit",
	"requests per minute",
	"token limit",
	"try again later",
}

var rateLimitTypes = map[string]bool{
	"rate_limit_error": true,
	"tokens_exceeded":  true,
	"quota_exceeded":   true,
}

var remainingHeaders = []string{
	"x-ratelimit-remaining",
	"anthropic-ratelimit-requests-remaining",
}

// isRateLimited reports whether a failed response signals throttling.
// apiErr may be nil when the body was not a structured error.
func isRateLimited(status int, header http.Header, apiErr *apiError) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	for _, h := range remainingHeaders {
		if strings.TrimSpace(header.Get(h)) == "0" {
			return true
		}
	}
	if apiErr == nil {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	for _, p := range rateLimitPhrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return rateLimitTypes[apiErr.Type]
}

// maxRetryAfterSecs keeps the seconds-to-Duration conversion from overflowing.
const maxRetryAfterSecs = math.MaxInt64 / int64(time.Second)

// parseRetryAfter reads Retry-After as whole seconds. Absent, zero or
// unparsable values yield zero.
func parseRetryAfter(header http.Header) time.Duration {
	v := strings.TrimSpace(header.Get("Retry-After"))
	if v == "" {
		return 0
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil || secs <= 0 {
		return 0
	}
	if secs > maxRetryAfterSecs {
		secs = maxRetryAfterSecs
	}
	return time.Duration(secs) * time.Second
}

// retryDelay returns how long to wait before retry number retry (zero based).
// A server hint wins over the computed backoff.
func (c *Client) retryDelay(retry int, err error) time.Duration {
	var rl *domain.RateLimitError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	return c.backoff(retry)
}

// backoff is initial*2^retry plus jitter in [0, initial), capped at the max delay.
func (c *Client) backoff(retry int) time.Duration {
	initial := float64(c.cfg.InitialRetryDelay)
	d := initial*math.Pow(2, float64(retry)) + c.jitter()*initial
	if limit := float64(c.cfg.MaxRetryDelay); d > limit || math.IsInf(d, 0) {
		return c.cfg.MaxRetryDelay
	}
	return time.Duration(d)
}

// surface strips the rate-limit marker once retries are exhausted.
func surface(err error) error {
	var rl *domain.RateLimitError
	if errors.As(err, &rl) && rl.Err != nil {
		return rl.Err
	}
	return err
}

func retryReason(err error) string {
	var rl *domain.RateLimitError
	if errors.As(err, &rl) {
		return "rate_limit"
	}
	return "transport"
}
