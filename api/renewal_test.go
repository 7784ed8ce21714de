package api_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-hrms-client/api"
	"github.com/stretchr/testify/require"
)

// TestConcurrentRequestsWithValidTokenNeverRenew issues many requests while
// the stored access token is still accepted; no renewal call may occur.
func TestConcurrentRequestsWithValidTokenNeverRenew(t *testing.T) {
	const concurrency = 8

	f := newBackendFixture(t)
	client := f.newClient(t)

	var wg sync.WaitGroup
	errs := make([]error, concurrency)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.Get(context.Background(), protectedPath, nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int64(0), f.refreshCalls.Load())
}

// TestConcurrentUnauthorizedRequestsShareOneRenewal drives N requests into a
// simultaneous 401 and verifies single-flight renewal: exactly one refresh
// call, and every request retried successfully with the one new token.
func TestConcurrentUnauthorizedRequestsShareOneRenewal(t *testing.T) {
	const concurrency = 8

	f := newBackendFixture(t)
	// A slow refresh keeps the single flight open long enough for every
	// rejected request to attach to it.
	f.refreshDelay = 250 * time.Millisecond

	// Barrier: the first wave of requests is held until all N have arrived,
	// then every one of them is rejected at once.
	var barrierLock sync.Mutex
	arrived := 0
	allArrived := make(chan struct{})

	f.protected = func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer "+newAccessToken {
			writeJSON(w, http.StatusOK, `{"success":true,"data":{"status":"ok"}}`)
			return
		}
		barrierLock.Lock()
		arrived++
		if arrived == concurrency {
			close(allArrived)
		}
		barrierLock.Unlock()
		<-allArrived
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"error":{"message":"Token is invalid or expired","code":401}}`)
	}

	client := f.newClient(t)

	var wg sync.WaitGroup
	errs := make([]error, concurrency)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var out statusPayload
			errs[i] = client.Get(context.Background(), protectedPath, &out)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int64(1), f.refreshCalls.Load(), "renewal must be single-flight")

	session := f.store.Read()
	require.NotNil(t, session)
	require.Equal(t, newAccessToken, session.AccessToken)
	require.Equal(t, newRefreshToken, session.RefreshToken)
}

// TestConcurrentRenewalFailureResolvesAllWaiters verifies that when the one
// renewal fails, every waiting request terminates unauthenticated and the
// store ends cleared.
func TestConcurrentRenewalFailureResolvesAllWaiters(t *testing.T) {
	const concurrency = 6

	f := newBackendFixture(t)
	f.refreshFails = true
	f.refreshDelay = 250 * time.Millisecond

	var barrierLock sync.Mutex
	arrived := 0
	allArrived := make(chan struct{})

	f.protected = func(w http.ResponseWriter, r *http.Request) {
		barrierLock.Lock()
		arrived++
		if arrived == concurrency {
			close(allArrived)
		}
		barrierLock.Unlock()
		<-allArrived
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"error":{"message":"Token is invalid or expired","code":401}}`)
	}

	client := f.newClient(t)

	var wg sync.WaitGroup
	errs := make([]error, concurrency)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.Get(context.Background(), protectedPath, nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.True(t, api.IsUnauthenticated(err))
	}
	require.Equal(t, int64(1), f.refreshCalls.Load())
	require.Nil(t, f.store.Read())
}
