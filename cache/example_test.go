package cache_test

import (
	"context"
	"fmt"
	"time"

	"github.com/disputeflow/outbound/cache"
)

func ExampleMemoryCache() {
	c := cache.NewMemoryCache(cache.MemoryCacheConfig{MaxEntries: 128})

	keyer := cache.NewRequestKeyer()
	key, _ := keyer.Key("pms", "GET", "https://pms.example.com/v1/folio/42", nil)

	_ = c.Set(context.Background(), key, []byte(`{"folio":"f-42"}`), time.Minute)

	if body, ok := c.Get(context.Background(), key); ok {
		fmt.Println(string(body))
	}
	// Output: {"folio":"f-42"}
}
