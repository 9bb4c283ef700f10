// Package rewrite turns source articles into Hindi news copy using whichever
// AI providers are configured, falling back to fixed templates when none
// produce acceptable text.
package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hindinews/pkg/domain"
)

// MinProviderText is the shortest raw completion a provider may return.
const MinProviderText = 200

// Provider is a single AI text-generation backend.
type Provider interface {
	Name() string
	Generate(ctx context.Context, title, content string) (string, error)
}

// ErrorKind classifies provider failures.
type ErrorKind string

const (
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindRateLimited     ErrorKind = "rate_limited"
	KindBadStatus       ErrorKind = "bad_status"
	KindTooShort        ErrorKind = "too_short"
	KindTimeout         ErrorKind = "timeout"
	KindTransport       ErrorKind = "transport"
	KindNotConfigured   ErrorKind = "not_configured"
)

// ProviderError is returned by every Provider on failure.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("provider %s: %s", e.Provider, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthenticated
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindBadStatus
	}
}

// postJSON sends payload and decodes a 2xx response into v. Failures come
// back as *ProviderError.
func postJSON(ctx context.Context, client *http.Client, provider, endpoint string, headers map[string]string, payload, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &ProviderError{Provider: provider, Kind: KindTransport, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &ProviderError{Provider: provider, Kind: KindTransport, Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, val := range headers {
		req.Header.Set(k, val)
	}

	resp, err := client.Do(req)
	if err != nil {
		kind := KindTransport
		if errors.Is(err, context.DeadlineExceeded) {
			kind = KindTimeout
		}
		return &ProviderError{Provider: provider, Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &ProviderError{
			Provider: provider,
			Kind:     kindForStatus(resp.StatusCode),
			Status:   resp.StatusCode,
			Err:      errors.New(strings.TrimSpace(string(snippet))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		kind := KindTransport
		if errors.Is(err, context.DeadlineExceeded) {
			kind = KindTimeout
		}
		return &ProviderError{Provider: provider, Kind: kind, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// checkLength rejects completions under MinProviderText runes.
func checkLength(provider, text string) (string, error) {
	text = strings.TrimSpace(text)
	if n := domain.RuneLen(text); n < MinProviderText {
		return "", &ProviderError{Provider: provider, Kind: KindTooShort, Err: fmt.Errorf("%d characters", n)}
	}
	return text, nil
}

const systemPrompt = "आप एक अनुभवी हिंदी समाचार संपादक हैं। आप दी गई खबर को सरल, स्पष्ट और तथ्यात्मक हिंदी में दोबारा लिखते हैं।"

// maxPromptContent caps how much source text goes into a prompt.
const maxPromptContent = 3000

// buildPrompt asks for a Hindi headline on the first line and the body after it.
func buildPrompt(title, content string) string {
	return fmt.Sprintf(`निम्नलिखित समाचार को हिंदी में 300 से 400 शब्दों के मौलिक समाचार लेख के रूप में दोबारा लिखें।
नियम:
- पहली पंक्ति में केवल नया शीर्षक लिखें।
- उसके बाद 4 से 6 अनुच्छेदों में पूरी खबर लिखें।
- तथ्य, नाम, स्थान और आंकड़े न बदलें।
- कोई भूमिका, टिप्पणी या मार्कडाउन न जोड़ें।

शीर्षक: %s

समाचार: %s`, title, domain.Truncate(content, maxPromptContent))
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
