package account

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const stateTTL = 10 * time.Minute

// StateManager issues and validates one-time OAuth state tokens.
type StateManager struct {
	states map[string]stateEntry
	mutex  sync.Mutex
}

type stateEntry struct {
	createdAt time.Time
	provider  string
}

var globalStateManager = NewStateManager()

func init() {
	go globalStateManager.startCleanup()
}

func NewStateManager() *StateManager {
	return &StateManager{
		states: make(map[string]stateEntry),
	}
}

// GenerateOAuthState creates and stores a state token for the given provider.
func GenerateOAuthState(provider string) (string, error) {
	return globalStateManager.Generate(provider)
}

// ValidateOAuthState checks and consumes a state token.
func ValidateOAuthState(state, provider string) error {
	return globalStateManager.Validate(state, provider)
}

func (sm *StateManager) Generate(provider string) (string, error) {
	logger := slog.With("component", "state_manager", "operation", "generate", "provider", provider)

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logger.Error("Failed to generate random bytes for state token", "error", err)
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}

	state := base64.URLEncoding.EncodeToString(b)

	sm.mutex.Lock()
	sm.states[state] = stateEntry{
		createdAt: time.Now(),
		provider:  provider,
	}
	sm.mutex.Unlock()

	logger.Debug("OAuth state token generated and stored")
	return state, nil
}

// Validate checks the state token and removes it (one-time use).
func (sm *StateManager) Validate(state, provider string) error {
	logger := slog.With("component", "state_manager", "operation", "validate", "provider", provider)

	if state == "" {
		logger.Warn("Empty state token provided")
		return fmt.Errorf("state token is required")
	}

	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	entry, exists := sm.states[state]
	if !exists {
		logger.Warn("Invalid or expired state token")
		return fmt.Errorf("invalid or expired state token")
	}

	delete(sm.states, state)

	if time.Since(entry.createdAt) > stateTTL {
		logger.Warn("Expired state token", "age_minutes", time.Since(entry.createdAt).Minutes())
		return fmt.Errorf("state token has expired")
	}

	if entry.provider != provider {
		logger.Warn("State token provider mismatch",
			"expected_provider", entry.provider,
			"received_provider", provider)
		return fmt.Errorf("state token provider mismatch")
	}

	logger.Debug("State token validated successfully")
	return nil
}

func (sm *StateManager) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		sm.mutex.Lock()
		now := time.Now()
		for state, entry := range sm.states {
			if now.Sub(entry.createdAt) > stateTTL {
				delete(sm.states, state)
			}
		}
		sm.mutex.Unlock()
	}
}
