// Package session guarda o token bearer do usuário. O client REST recebe um
// Store no construtor, então testes podem injetar um token fixo.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNoSession = errors.New("no active session")

type Store interface {
	// Token devolve ErrNoSession quando não há login
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// Memory é um Store de processo único, com expiração opcional
type Memory struct {
	mu      sync.RWMutex
	token   string
	expires time.Time
	now     func() time.Time
}

func NewMemory() *Memory { return &Memory{now: time.Now} }

// Static devolve um Store já logado, útil em testes e ferramentas
func Static(token string) *Memory {
	m := NewMemory()
	m.token = token
	return m
}

func (m *Memory) Token(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == "" {
		return "", ErrNoSession
	}
	if !m.expires.IsZero() && !m.now().Before(m.expires) {
		return "", ErrNoSession
	}
	return m.token, nil
}

// SetToken com ttl <= 0 não expira
func (m *Memory) SetToken(ctx context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.expires = time.Time{}
	if ttl > 0 {
		m.expires = m.now().Add(ttl)
	}
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.expires = time.Time{}
	return nil
}
