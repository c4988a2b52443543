package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// openTestStore creates a Store in a temporary directory.
func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), opts...)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return s
}

// TestStoreSetGet tests the basic roundtrip for valid payloads.
func TestStoreSetGet(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	payload := json.RawMessage(`{"services": [{"service_name": "EC2"}]}`)
	if err := s.Set(ctx, "service_list_aws", payload); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := s.Get(ctx, "service_list_aws")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Get returned %s, want %s", got, payload)
	}
}

// TestStoreSetOverwrites tests that Set replaces an existing entry whole.
func TestStoreSetOverwrites(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "k", json.RawMessage(`{"v": 1}`)); err != nil {
		t.Fatalf("first Set failed: %v", err)
	}
	if err := s.Set(ctx, "k", json.RawMessage(`{"v": 2}`)); err != nil {
		t.Fatalf("second Set failed: %v", err)
	}

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `{"v": 2}` {
		t.Errorf("Get returned %s, want replacement document", got)
	}
}

// TestStoreInvalidPayloads tests that null/empty payloads are never written.
func TestStoreInvalidPayloads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload json.RawMessage
	}{
		{name: "null", payload: json.RawMessage(`null`)},
		{name: "empty object", payload: json.RawMessage(`{}`)},
		{name: "empty array", payload: json.RawMessage(`[]`)},
		{name: "empty bytes", payload: json.RawMessage(``)},
		{name: "whitespace empty object", payload: json.RawMessage("  {\n}  ")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := openTestStore(t)
			ctx := context.Background()

			if err := s.Set(ctx, "k", tt.payload); err != nil {
				t.Fatalf("Set should be a silent no-op, got error: %v", err)
			}
			if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
				t.Errorf("Get after invalid Set = %v, want ErrMiss", err)
			}
		})
	}
}

// TestStoreGetUnsetKey tests that an unset key is a miss.
func TestStoreGetUnsetKey(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	if _, err := s.Get(context.Background(), "never_written"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get on unset key = %v, want ErrMiss", err)
	}
}

// TestStoreTTLExpiry tests that entries older than the TTL are misses
// regardless of payload validity.
func TestStoreTTLExpiry(t *testing.T) {
	t.Parallel()

	current := time.Now()
	s := openTestStore(t,
		WithTTL(time.Hour),
		WithClock(func() time.Time { return current }),
	)
	ctx := context.Background()

	if err := s.Set(ctx, "k", json.RawMessage(`{"fresh": true}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Still fresh just inside the TTL window
	current = current.Add(59 * time.Minute)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("Get inside TTL failed: %v", err)
	}

	// Expired once the window is exceeded
	current = current.Add(2 * time.Minute)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get after TTL = %v, want ErrMiss", err)
	}
}

// TestStoreCorruptEntry tests that an unparseable stored entry is a miss,
// not an error, and can be overwritten.
func TestStoreCorruptEntry(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	// Corrupt the row behind the store's back.
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO cache_entries (key, payload, written_at) VALUES (?, ?, ?)",
		"k", `{"broken": `, time.Now().Unix(),
	)
	if err != nil {
		t.Fatalf("failed to inject corrupt entry: %v", err)
	}

	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("Get on corrupt entry = %v, want ErrMiss", err)
	}

	// The orchestrator overwrites corrupt entries on the next Set.
	if err := s.Set(ctx, "k", json.RawMessage(`{"fixed": true}`)); err != nil {
		t.Fatalf("Set over corrupt entry failed: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get after repair failed: %v", err)
	}
	if string(got) != `{"fixed": true}` {
		t.Errorf("Get returned %s, want repaired document", got)
	}
}

// TestStoreClear tests unconditional removal of all entries.
func TestStoreClear(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"technical_a", "pricing_a", "result_a"} {
		if err := s.Set(ctx, key, json.RawMessage(`{"data": 1}`)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	for _, key := range []string{"technical_a", "pricing_a", "result_a"} {
		if _, err := s.Get(ctx, key); !errors.Is(err, ErrMiss) {
			t.Errorf("Get(%q) after Clear = %v, want ErrMiss", key, err)
		}
	}
}

// TestValidPayload tests the validity predicate.
func TestValidPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    bool
	}{
		{name: "object", payload: `{"a": 1}`, want: true},
		{name: "array", payload: `[1, 2]`, want: true},
		{name: "string scalar", payload: `"ok"`, want: true},
		{name: "number scalar", payload: `42`, want: true},
		{name: "null", payload: `null`, want: false},
		{name: "empty object", payload: `{}`, want: false},
		{name: "empty array", payload: `[]`, want: false},
		{name: "empty", payload: ``, want: false},
		{name: "not json", payload: `{{nope`, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ValidPayload(json.RawMessage(tt.payload)); got != tt.want {
				t.Errorf("ValidPayload(%q) = %v, want %v", tt.payload, got, tt.want)
			}
		})
	}
}
