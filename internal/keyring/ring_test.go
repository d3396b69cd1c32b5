package keyring

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		keys    []string
		wantLen int
		wantErr error
	}{
		{name: "single key", keys: []string{"K1"}, wantLen: 1},
		{name: "trims and drops blanks", keys: []string{" K1 ", "", "  ", "K2"}, wantLen: 2},
		{name: "nil pool", keys: nil, wantErr: ErrEmpty},
		{name: "only blanks", keys: []string{"", " "}, wantErr: ErrEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ring, err := New(tt.keys)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if ring.Len() != tt.wantLen {
				t.Errorf("Expected len %d, got %d", tt.wantLen, ring.Len())
			}
		})
	}
}

func TestNextCyclesInOrder(t *testing.T) {
	for k := 1; k <= 5; k++ {
		pool := make([]string, k)
		for i := range pool {
			pool[i] = string(rune('A' + i))
		}

		ring, err := New(pool)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		for i := 0; i < 3*k+1; i++ {
			got := ring.Next()
			want := pool[i%k]
			if got != want {
				t.Fatalf("pool size %d, call %d: expected %s, got %s", k, i, want, got)
			}
		}
	}
}

func TestRingsAreIndependent(t *testing.T) {
	a, _ := New([]string{"K1", "K2"})
	b, _ := New([]string{"K1", "K2"})

	a.Next()
	if got := b.Next(); got != "K1" {
		t.Errorf("Expected fresh ring to start at K1, got %s", got)
	}
	if got := a.Next(); got != "K2" {
		t.Errorf("Expected K2, got %s", got)
	}
}
