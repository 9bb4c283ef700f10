package rewrite

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"hindinews/pkg/domain"
)

// DefaultProviderTimeout bounds a provider call when none is given.
const DefaultProviderTimeout = 45 * time.Second

type entry struct {
	provider Provider
	timeout  time.Duration
}

type outcome struct {
	name     string
	raw      string
	err      error
	duration time.Duration
}

// Engine races every configured provider and accepts the first acceptable
// result in configuration order, falling back to a template.
type Engine struct {
	providers []entry
	logger    *slog.Logger
	pick      func(n int) int
}

// Option configures an Engine.
type Option func(*Engine)

// WithProvider appends a provider; registration order is preference order.
func WithProvider(p Provider, timeout time.Duration) Option {
	return func(e *Engine) {
		if p == nil {
			return
		}
		if timeout <= 0 {
			timeout = DefaultProviderTimeout
		}
		e.providers = append(e.providers, entry{provider: p, timeout: timeout})
	}
}

// WithTemplatePicker overrides the fallback template choice.
func WithTemplatePicker(pick func(n int) int) Option {
	return func(e *Engine) {
		e.pick = pick
	}
}

func NewEngine(logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{logger: logger, pick: rand.IntN}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Providers lists configured provider names in preference order.
func (e *Engine) Providers() []string {
	names := make([]string, len(e.providers))
	for i, p := range e.providers {
		names[i] = p.provider.Name()
	}
	return names
}

// Rewrite never fails: with no acceptable provider output it returns the
// template fallback.
func (e *Engine) Rewrite(ctx context.Context, title, content string) domain.RewriteResult {
	if len(e.providers) == 0 {
		e.logger.Debug("no providers configured, using fallback")
		return Fallback(title, content, e.pick)
	}

	outcomes := e.race(ctx, title, content)

	for _, o := range outcomes {
		if o.err != nil {
			e.logger.Warn("provider failed", "provider", o.name, "error", o.err, "duration", o.duration)
			continue
		}
		newTitle, body := ParseResponse(o.raw)
		if domain.RuneLen(body) <= MinAcceptedContent {
			e.logger.Warn("provider output too short after parsing", "provider", o.name, "chars", domain.RuneLen(body))
			continue
		}
		if newTitle == "" {
			newTitle = title
		}
		e.logger.Info("rewrite accepted", "provider", o.name, "duration", o.duration)
		return domain.RewriteResult{
			Title:     newTitle,
			Content:   body,
			Provider:  o.name,
			WordCount: domain.CountWords(body),
			Success:   true,
		}
	}

	e.logger.Warn("all providers failed, using fallback", "providers", len(e.providers))
	return Fallback(title, content, e.pick)
}

// race calls every provider concurrently under its own deadline and waits
// for all of them. Outcomes keep configuration order.
func (e *Engine) race(ctx context.Context, title, content string) []outcome {
	outcomes := make([]outcome, len(e.providers))

	var wg sync.WaitGroup
	for i, p := range e.providers {
		wg.Add(1)
		go func(i int, p entry) {
			defer wg.Done()
			start := time.Now()

			callCtx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()

			raw, err := e.call(callCtx, p.provider, title, content)
			if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
				err = &ProviderError{Provider: p.provider.Name(), Kind: KindTimeout, Err: err}
			}
			outcomes[i] = outcome{name: p.provider.Name(), raw: raw, err: err, duration: time.Since(start)}
		}(i, p)
	}
	wg.Wait()
	return outcomes
}

// call runs Generate but returns as soon as ctx expires, even if the provider
// ignores its context.
func (e *Engine) call(ctx context.Context, p Provider, title, content string) (string, error) {
	type result struct {
		raw string
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: &ProviderError{Provider: p.Name(), Kind: KindTransport, Err: errors.New("provider panicked")}}
			}
		}()
		raw, err := p.Generate(ctx, title, content)
		done <- result{raw: raw, err: err}
	}()

	select {
	case r := <-done:
		return r.raw, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
