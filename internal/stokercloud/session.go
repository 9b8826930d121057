package stokercloud

import (
	"context"
	"errors"
	"sync"
)

// Session binds a Client to a username and a TokenStore and implements the
// token lifecycle both fetchers share: reuse the stored token while it is
// valid, re-login when it is not, and recover from a token-expiry signal by
// invalidating and retrying the fetch exactly once.
type Session struct {
	client   *Client
	tokens   *TokenStore
	username string

	// loginMu serializes logins so that two streams hitting expiry at the
	// same time do not both issue a login; the second caller reuses the
	// fresh token the first one stored.
	loginMu sync.Mutex
}

// NewSession creates a session for the given account.
func NewSession(client *Client, tokens *TokenStore, username string) *Session {
	return &Session{client: client, tokens: tokens, username: username}
}

// ensureToken returns the current valid token, logging in when the store has
// none. This is the single re-authentication choke point.
func (s *Session) ensureToken(ctx context.Context) (Token, error) {
	if tok, ok := s.tokens.Get(); ok {
		return tok, nil
	}

	s.loginMu.Lock()
	defer s.loginMu.Unlock()

	// Another caller may have logged in while we waited for the lock.
	if tok, ok := s.tokens.Get(); ok {
		return tok, nil
	}

	tok, err := s.client.Login(ctx, s.username)
	if err != nil {
		return Token{}, err
	}
	s.tokens.Set(tok)
	return tok, nil
}

// FetchControllerData retrieves the current telemetry payload for a screen.
func (s *Session) FetchControllerData(ctx context.Context, screen string) (map[string]any, error) {
	var payload map[string]any
	err := s.fetchWithAuthRetry(ctx, "controller data", func(tok Token) error {
		var err error
		payload, err = s.client.ControllerData(ctx, screen, tok)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchEventLog retrieves one page of historical event records.
func (s *Session) FetchEventLog(ctx context.Context, count, offset int) ([]Record, error) {
	var records []Record
	err := s.fetchWithAuthRetry(ctx, "event log", func(tok Token) error {
		var err error
		records, err = s.client.EventLog(ctx, count, offset, tok)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// fetchWithAuthRetry runs op with a valid token, allowing exactly one
// invalidate-and-relogin cycle when the remote signals token expiry. A
// second expiry within the same call, or any non-auth failure, surfaces as
// *FetchError; the next poll tick starts clean.
func (s *Session) fetchWithAuthRetry(ctx context.Context, op string, fetch func(Token) error) error {
	for attempt := 1; attempt <= 2; attempt++ {
		tok, err := s.ensureToken(ctx)
		if err != nil {
			return err
		}

		err = fetch(tok)
		if err == nil {
			return nil
		}

		var authErr *AuthError
		if errors.As(err, &authErr) && attempt == 1 {
			s.tokens.Invalidate()
			continue
		}
		return &FetchError{Op: op, Cause: err}
	}
	// Unreachable: the loop always returns.
	return nil
}
