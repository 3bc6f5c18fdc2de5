package credentials

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "pms-adapter",
		"exp": time.Now().Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return signed
}

func TestNewRenewingBearer_RequiresFetch(t *testing.T) {
	_, err := NewRenewingBearer(RenewingBearerConfig{})
	if !errors.Is(err, ErrNoFetcher) {
		t.Errorf("NewRenewingBearer() error = %v, want ErrNoFetcher", err)
	}
}

func TestRenewingBearer_FetchesOnFirstUse(t *testing.T) {
	var fetches atomic.Int32
	want := signedToken(t, time.Hour)

	b, err := NewRenewingBearer(RenewingBearerConfig{
		Fetch: func(ctx context.Context) (string, error) {
			fetches.Add(1)
			return want, nil
		},
	})
	if err != nil {
		t.Fatalf("NewRenewingBearer() error = %v", err)
	}

	headers, err := b.Headers(context.Background())
	if err != nil {
		t.Fatalf("Headers() error = %v", err)
	}
	if headers["Authorization"] != "Bearer "+want {
		t.Errorf("Authorization = %q, want bearer token", headers["Authorization"])
	}
	if fetches.Load() != 1 {
		t.Errorf("fetches = %d, want 1", fetches.Load())
	}

	// Cached token is reused without another fetch.
	if _, err := b.Headers(context.Background()); err != nil {
		t.Fatalf("Headers() error = %v", err)
	}
	if fetches.Load() != 1 {
		t.Errorf("fetches after reuse = %d, want 1", fetches.Load())
	}
}

func TestRenewingBearer_RenewsExpiringToken(t *testing.T) {
	var fetches atomic.Int32
	tokens := []string{
		signedToken(t, time.Second), // inside the default 30s leeway
		signedToken(t, time.Hour),
	}

	b, err := NewRenewingBearer(RenewingBearerConfig{
		Fetch: func(ctx context.Context) (string, error) {
			n := fetches.Add(1)
			return tokens[n-1], nil
		},
	})
	if err != nil {
		t.Fatalf("NewRenewingBearer() error = %v", err)
	}

	if _, err := b.Headers(context.Background()); err != nil {
		t.Fatalf("Headers() error = %v", err)
	}

	headers, err := b.Headers(context.Background())
	if err != nil {
		t.Fatalf("Headers() error = %v", err)
	}
	if fetches.Load() != 2 {
		t.Errorf("fetches = %d, want 2 (expiring token renewed)", fetches.Load())
	}
	if headers["Authorization"] != "Bearer "+tokens[1] {
		t.Error("Headers() did not serve the renewed token")
	}
}

func TestRenewingBearer_ConcurrentRenewalCollapses(t *testing.T) {
	var fetches atomic.Int32
	release := make(chan struct{})

	b, err := NewRenewingBearer(RenewingBearerConfig{
		Fetch: func(ctx context.Context) (string, error) {
			n := fetches.Add(1)
			<-release
			return signedToken(t, time.Hour) + strconv.Itoa(int(n)), nil
		},
	})
	if err != nil {
		t.Fatalf("NewRenewingBearer() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = b.Headers(context.Background())
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := fetches.Load(); n != 1 {
		t.Errorf("fetches = %d, want 1 (singleflight)", n)
	}
}

func TestRenewingBearer_Refresh(t *testing.T) {
	var fetches atomic.Int32

	b, err := NewRenewingBearer(RenewingBearerConfig{
		Fetch: func(ctx context.Context) (string, error) {
			fetches.Add(1)
			return signedToken(t, time.Hour), nil
		},
	})
	if err != nil {
		t.Fatalf("NewRenewingBearer() error = %v", err)
	}

	if _, err := b.Headers(context.Background()); err != nil {
		t.Fatalf("Headers() error = %v", err)
	}

	refresh := b.Refresh()
	headers, err := refresh(context.Background(), errors.New("401 unauthorized"))
	if err != nil {
		t.Fatalf("refresh error = %v", err)
	}
	if headers["Authorization"] == "" {
		t.Error("refresh returned empty Authorization header")
	}
	if fetches.Load() != 2 {
		t.Errorf("fetches = %d, want 2 (refresh discards cache)", fetches.Load())
	}
}

func TestRenewingBearer_FetchFailureFallsBackToCached(t *testing.T) {
	var fetches atomic.Int32
	cached := signedToken(t, time.Second) // expiring, forces renewal attempt

	b, err := NewRenewingBearer(RenewingBearerConfig{
		Fetch: func(ctx context.Context) (string, error) {
			if fetches.Add(1) == 1 {
				return cached, nil
			}
			return "", errors.New("credential backend down")
		},
	})
	if err != nil {
		t.Fatalf("NewRenewingBearer() error = %v", err)
	}

	if _, err := b.Headers(context.Background()); err != nil {
		t.Fatalf("Headers() error = %v", err)
	}

	// Renewal fails; the source degrades to the cached token.
	headers, err := b.Headers(context.Background())
	if err != nil {
		t.Fatalf("Headers() error = %v", err)
	}
	if headers["Authorization"] != "Bearer "+cached {
		t.Error("Headers() did not fall back to the cached token")
	}
}
