package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jrsteele09/go-hrms-client/internal/config"
	"github.com/jrsteele09/go-hrms-client/store"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const renewalKey = "token-renewal"

// refreshRequest and refreshResponse mirror the refresh endpoint contract.
type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// renewer exchanges the stored refresh token for a fresh access/refresh
// pair. Renewal is single-flight: however many requests discover an expired
// token at the same moment, exactly one renewal call reaches the backend
// and every waiter shares its outcome. The coordinator drops the shared
// handle once resolved, so a later expiry starts a fresh renewal.
type renewer struct {
	baseURL    string
	timeout    time.Duration
	store      store.Store
	httpClient *http.Client
	group      singleflight.Group
	log        zerolog.Logger
}

// Renew returns the new access token, or "" when the session cannot be
// renewed. On any failure the store is cleared, so the token pair is never
// left half-rotated. Renewal runs under its own timeout context: a caller
// whose request deadline expires never cancels a renewal other callers have
// already attached to.
func (r *renewer) Renew() string {
	token, _, _ := r.group.Do(renewalKey, func() (any, error) {
		return r.renewOnce(), nil
	})
	return token.(string)
}

func (r *renewer) renewOnce() string {
	session := r.store.Read()
	if session == nil || session.RefreshToken == "" {
		r.log.Debug().Msg("no refresh token available, session cannot be renewed")
		r.store.Clear()
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	payload, err := json.Marshal(refreshRequest{Refresh: session.RefreshToken})
	if err != nil {
		r.store.Clear()
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+config.RefreshEndpoint, bytes.NewReader(payload))
	if err != nil {
		r.store.Clear()
		return ""
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.Debug().Err(err).Msg("token renewal call failed")
		r.store.Clear()
		return ""
	}
	defer resp.Body.Close()

	var envelope Envelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || !envelope.Success || resp.StatusCode != http.StatusOK {
		r.log.Debug().Int("status", resp.StatusCode).Msg("token renewal rejected")
		r.store.Clear()
		return ""
	}

	var tokens refreshResponse
	if err := json.Unmarshal(envelope.Data, &tokens); err != nil || tokens.Access == "" || tokens.Refresh == "" {
		r.log.Debug().Msg("token renewal returned an unusable pair")
		r.store.Clear()
		return ""
	}

	// The pair is written before any waiter is released, so every retry
	// reads the rotated tokens.
	r.store.Write(store.Session{AccessToken: tokens.Access, RefreshToken: tokens.Refresh})
	r.log.Debug().Msg("access token renewed")
	return tokens.Access
}
