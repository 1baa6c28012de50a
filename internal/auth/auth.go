// Package auth resolves request credentials to a user identity. The
// engine itself never authenticates; it only requires that a user has
// been resolved before any aggregation runs. The static provider stands
// in for a real identity service behind the same port.
package auth

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"bilancio/internal/core"
)

// Provider resolves a bearer token to a user id. Implementations return
// core.ErrUnauthenticated for unknown or empty tokens.
type Provider interface {
	ResolveUser(ctx context.Context, token string) (string, error)
}

// StaticProvider maps fixed tokens to user ids.
type StaticProvider struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewStaticProvider(tokens map[string]string) *StaticProvider {
	m := make(map[string]string, len(tokens))
	for token, userID := range tokens {
		m[token] = userID
	}
	return &StaticProvider{tokens: m}
}

// NewStaticProviderFromSpec parses "token:user" pairs separated by commas,
// the AUTH_TOKENS format.
func NewStaticProviderFromSpec(spec string) (*StaticProvider, error) {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, userID, ok := strings.Cut(pair, ":")
		if !ok || token == "" || userID == "" {
			return nil, fmt.Errorf("malformed token pair %q: want token:user", pair)
		}
		tokens[token] = userID
	}
	return NewStaticProvider(tokens), nil
}

// NewStaticProviderFromFile reads one "token:user" pair per line. Blank
// lines and lines starting with # are skipped.
func NewStaticProviderFromFile(path string) (*StaticProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()

	tokens := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		token, userID, ok := strings.Cut(line, ":")
		if !ok || token == "" || userID == "" {
			return nil, fmt.Errorf("malformed token line %q: want token:user", line)
		}
		tokens[token] = userID
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	return NewStaticProvider(tokens), nil
}

func (p *StaticProvider) ResolveUser(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", core.ErrUnauthenticated
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	userID, ok := p.tokens[token]
	if !ok {
		return "", core.ErrUnauthenticated
	}
	return userID, nil
}
