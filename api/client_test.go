package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-hrms-client/api"
	"github.com/jrsteele09/go-hrms-client/store"
	"github.com/jrsteele09/go-hrms-client/store/storefakes"
	"github.com/stretchr/testify/require"
)

const (
	refreshPath   = "/api/v1/auth/refresh/"
	protectedPath = "/api/v1/employees/"

	oldAccessToken  = "a1"
	oldRefreshToken = "r1"
	newAccessToken  = "a2"
	newRefreshToken = "r2"
)

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// backendFixture is a fake HRMS backend with a working refresh endpoint and
// a protected endpoint that accepts only the current access token.
type backendFixture struct {
	store        *storefakes.FakeStore
	server       *httptest.Server
	refreshCalls atomic.Int64
	refreshFails bool
	refreshDelay time.Duration
	protected    http.HandlerFunc
}

func newBackendFixture(t *testing.T) *backendFixture {
	t.Helper()

	f := &backendFixture{store: storefakes.NewFakeStore()}
	f.store.Write(store.Session{AccessToken: oldAccessToken, RefreshToken: oldRefreshToken})

	mux := http.NewServeMux()
	mux.HandleFunc(refreshPath, func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		if f.refreshDelay > 0 {
			time.Sleep(f.refreshDelay)
		}
		if f.refreshFails {
			writeJSON(w, http.StatusUnauthorized, `{"success":false,"error":{"message":"Token is invalid or expired","code":401}}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"access":"`+newAccessToken+`","refresh":"`+newRefreshToken+`"}}`)
	})
	mux.HandleFunc(protectedPath, func(w http.ResponseWriter, r *http.Request) {
		if f.protected != nil {
			f.protected(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+newAccessToken && r.Header.Get("Authorization") != "Bearer "+oldAccessToken {
			writeJSON(w, http.StatusUnauthorized, `{"success":false,"error":{"message":"Token is invalid or expired","code":401}}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"status":"ok"}}`)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *backendFixture) newClient(t *testing.T, options ...api.Option) *api.Client {
	t.Helper()
	client, err := api.New(f.server.URL, f.store, options...)
	require.NoError(t, err)
	return client
}

type statusPayload struct {
	Status string `json:"status"`
}

func TestDoAttachesBearerToken(t *testing.T) {
	f := newBackendFixture(t)
	var seenAuth string
	f.protected = func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"status":"ok"}}`)
	}

	client := f.newClient(t)
	var out statusPayload
	require.NoError(t, client.Get(context.Background(), protectedPath, &out))
	require.Equal(t, "Bearer "+oldAccessToken, seenAuth)
	require.Equal(t, "ok", out.Status)
}

func TestDoWithoutStoredTokenSendsNoBearer(t *testing.T) {
	f := newBackendFixture(t)
	f.store.Clear()
	var seenAuth string
	f.protected = func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, `{"success":true}`)
	}

	client := f.newClient(t)
	require.NoError(t, client.Get(context.Background(), protectedPath, nil))
	require.Empty(t, seenAuth)
}

func TestDoCallerAuthorizationHeaderWins(t *testing.T) {
	f := newBackendFixture(t)
	var seenAuth string
	f.protected = func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"error":{"message":"Token is invalid or expired","code":401}}`)
	}

	client := f.newClient(t)
	err := client.Get(context.Background(), protectedPath, nil, api.WithHeader("Authorization", "Bearer custom"))

	// The pipeline did not attach the token, so a 401 must not trigger a
	// renewal; the failure envelope is surfaced directly.
	require.Equal(t, "Bearer custom", seenAuth)
	apiErr := api.AsError(err)
	require.NotNil(t, apiErr)
	require.Equal(t, api.KindHTTP, apiErr.Kind)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, int64(0), f.refreshCalls.Load())
}

func TestDoForwardsMultiValuedHeaders(t *testing.T) {
	f := newBackendFixture(t)
	var seenLanguages []string
	f.protected = func(w http.ResponseWriter, r *http.Request) {
		seenLanguages = r.Header.Values("Accept-Language")
		writeJSON(w, http.StatusOK, `{"success":true}`)
	}

	client := f.newClient(t)
	err := client.Get(context.Background(), protectedPath, nil,
		api.WithHeader("Accept-Language", "en-GB"),
		api.WithHeader("Accept-Language", "en"),
	)

	require.NoError(t, err)
	require.Equal(t, []string{"en-GB", "en"}, seenLanguages)
}

func TestDoSurfacesEnvelopeFailureMessage(t *testing.T) {
	f := newBackendFixture(t)
	f.protected = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"success":false,"error":{"message":"Invalid credentials","code":400}}`)
	}

	client := f.newClient(t)
	err := client.Post(context.Background(), protectedPath, map[string]string{"email": "x"}, nil)

	apiErr := api.AsError(err)
	require.NotNil(t, apiErr)
	require.Equal(t, api.KindHTTP, apiErr.Kind)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "Invalid credentials", apiErr.Message)
	require.Equal(t, "Invalid credentials", err.Error())
}

func TestDoSurfacesFailureEnvelopeOnTransportSuccess(t *testing.T) {
	f := newBackendFixture(t)
	f.protected = func(w http.ResponseWriter, r *http.Request) {
		// Transport-level 200 carrying a failure envelope.
		writeJSON(w, http.StatusOK, `{"success":false,"error":{"message":"Employee not found","code":404}}`)
	}

	client := f.newClient(t)
	err := client.Get(context.Background(), protectedPath, nil)

	apiErr := api.AsError(err)
	require.NotNil(t, apiErr)
	require.Equal(t, api.KindHTTP, apiErr.Kind)
	require.Equal(t, "Employee not found", apiErr.Message)
}

func TestDoNetworkFailure(t *testing.T) {
	f := newBackendFixture(t)
	client := f.newClient(t)
	f.server.Close()

	err := client.Get(context.Background(), protectedPath, nil)
	apiErr := api.AsError(err)
	require.NotNil(t, apiErr)
	require.Equal(t, api.KindNetwork, apiErr.Kind)
}

func TestDoTimeoutLeavesStoreUntouched(t *testing.T) {
	f := newBackendFixture(t)
	f.protected = func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		writeJSON(w, http.StatusOK, `{"success":true}`)
	}

	client := f.newClient(t, api.WithTimeout(50*time.Millisecond))
	err := client.Get(context.Background(), protectedPath, nil)

	require.True(t, api.IsTimeout(err))
	session := f.store.Read()
	require.NotNil(t, session)
	require.Equal(t, oldAccessToken, session.AccessToken)
	require.Equal(t, oldRefreshToken, session.RefreshToken)
}

func TestDoRenewsAndRetriesOnceOnUnauthorized(t *testing.T) {
	f := newBackendFixture(t)
	var protectedCalls atomic.Int64
	var retryAuth string
	f.protected = func(w http.ResponseWriter, r *http.Request) {
		protectedCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+newAccessToken {
			writeJSON(w, http.StatusUnauthorized, `{"success":false,"error":{"message":"Token is invalid or expired","code":401}}`)
			return
		}
		retryAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"status":"ok"}}`)
	}

	client := f.newClient(t)
	var out statusPayload
	require.NoError(t, client.Get(context.Background(), protectedPath, &out))

	require.Equal(t, "ok", out.Status)
	require.Equal(t, int64(1), f.refreshCalls.Load())
	require.Equal(t, int64(2), protectedCalls.Load())
	require.Equal(t, "Bearer "+newAccessToken, retryAuth)

	session := f.store.Read()
	require.NotNil(t, session)
	require.Equal(t, newAccessToken, session.AccessToken)
	require.Equal(t, newRefreshToken, session.RefreshToken)
}

func TestDoRetryIsNeverRenewedAgain(t *testing.T) {
	f := newBackendFixture(t)
	var protectedCalls atomic.Int64
	f.protected = func(w http.ResponseWriter, r *http.Request) {
		protectedCalls.Add(1)
		// Reject even the renewed token: total attempts stay bounded at two.
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"error":{"message":"Token is invalid or expired","code":401}}`)
	}

	client := f.newClient(t)
	err := client.Get(context.Background(), protectedPath, nil)

	apiErr := api.AsError(err)
	require.NotNil(t, apiErr)
	require.Equal(t, api.KindHTTP, apiErr.Kind)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, int64(1), f.refreshCalls.Load())
	require.Equal(t, int64(2), protectedCalls.Load())
}

func TestDoRenewalFailureClearsStoreAndFiresHook(t *testing.T) {
	f := newBackendFixture(t)
	f.refreshFails = true
	f.protected = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"error":{"message":"Token is invalid or expired","code":401}}`)
	}

	var hookCalls atomic.Int64
	client := f.newClient(t, api.WithUnauthenticatedHook(func() { hookCalls.Add(1) }))
	err := client.Get(context.Background(), protectedPath, nil)

	require.True(t, api.IsUnauthenticated(err))
	require.Nil(t, f.store.Read())
	require.Equal(t, int64(1), f.refreshCalls.Load())
	require.Equal(t, int64(1), hookCalls.Load())
}

func TestDoMissingRefreshTokenSkipsRenewalCall(t *testing.T) {
	f := newBackendFixture(t)
	f.store.Write(store.Session{AccessToken: oldAccessToken})
	f.protected = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"error":{"message":"Token is invalid or expired","code":401}}`)
	}

	client := f.newClient(t)
	err := client.Get(context.Background(), protectedPath, nil)

	require.True(t, api.IsUnauthenticated(err))
	require.Equal(t, int64(0), f.refreshCalls.Load())
	require.Nil(t, f.store.Read())
	require.Nil(t, f.store.CachedUser())
}
