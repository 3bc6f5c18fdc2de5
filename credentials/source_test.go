package credentials

import (
	"context"
	"testing"
)

func TestStatic_ReturnsCopy(t *testing.T) {
	src := Static(map[string]string{"X-Api-Key": "k1"})

	first, err := src.Headers(context.Background())
	if err != nil {
		t.Fatalf("Headers() error = %v", err)
	}
	first["X-Api-Key"] = "mutated"

	second, err := src.Headers(context.Background())
	if err != nil {
		t.Fatalf("Headers() error = %v", err)
	}
	if second["X-Api-Key"] != "k1" {
		t.Errorf("Headers()[X-Api-Key] = %q, want %q", second["X-Api-Key"], "k1")
	}
}

func TestStaticBearer(t *testing.T) {
	src := StaticBearer("tok123")

	headers, err := src.Headers(context.Background())
	if err != nil {
		t.Fatalf("Headers() error = %v", err)
	}
	if headers["Authorization"] != "Bearer tok123" {
		t.Errorf("Authorization = %q, want %q", headers["Authorization"], "Bearer tok123")
	}
}

func TestRefresher(t *testing.T) {
	refresh := Refresher(StaticBearer("fresh"))

	headers, err := refresh(context.Background(), nil)
	if err != nil {
		t.Fatalf("refresh error = %v", err)
	}
	if headers["Authorization"] != "Bearer fresh" {
		t.Errorf("Authorization = %q, want %q", headers["Authorization"], "Bearer fresh")
	}
}
