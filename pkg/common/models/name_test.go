package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"jane   doe", "Jane Doe"},
		{"  JOHN SMITH  ", "John Smith"},
		{"Alice\tWong", "Alice Wong"},
		{"carla mendez", "Carla Mendez"},
		{"   ", ""},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeName(c.in), "input %q", c.in)
	}
}

func TestNormalizeNameConcurrent(t *testing.T) {
	const goroutines = 8
	const iterations = 200

	var wg sync.WaitGroup
	errs := make(chan string, goroutines)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				if got := NormalizeName("jane   doe"); got != "Jane Doe" {
					select {
					case errs <- got:
					default:
					}
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for got := range errs {
		t.Fatalf("concurrent NormalizeName returned %q, want %q", got, "Jane Doe")
	}
}
