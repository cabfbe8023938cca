package calls

import (
	"sync"
	"testing"
)

func TestCounter_ConcurrentAdds(t *testing.T) {
	t.Parallel()

	c := NewCounter()

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Inc()
			}
		}()
	}
	wg.Wait()

	if got := c.Total(); got != workers*100 {
		t.Fatalf("total %d, want %d", got, workers*100)
	}

	c.Reset()
	if got := c.Total(); got != 0 {
		t.Fatalf("total after reset %d, want 0", got)
	}
}

func TestCounter_NilIsSafe(t *testing.T) {
	t.Parallel()

	var c *Counter
	c.Inc()
	c.Add(5)
	c.Reset()
	if got := c.Total(); got != 0 {
		t.Fatalf("nil counter total %d, want 0", got)
	}
}
