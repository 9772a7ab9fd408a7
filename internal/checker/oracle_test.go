package checker

import (
	"context"
	"errors"
	"sync"
	"testing"
)

const registeredWhois = `Domain Name: TAKEN.COM
Registry Domain ID: 2336799_DOMAIN_COM-VRSN
Registrar WHOIS Server: whois.example-registrar.com
Registrar: Example Registrar, Inc.
Updated Date: 2023-08-14T07:01:38Z
Creation Date: 1995-08-14T04:00:00Z
Registry Expiry Date: 2030-08-13T04:00:00Z
Name Server: NS1.EXAMPLE.COM
Name Server: NS2.EXAMPLE.COM
Domain Status: clientTransferProhibited https://icann.org/epp#clientTransferProhibited
`

const notFoundWhois = `No match for "FREE12345.COM".
>>> Last update of whois database: 2025-01-01T00:00:00Z <<<
`

type fakeWhois struct {
	raw string
	err error
}

func (f *fakeWhois) Whois(domainName string, servers ...string) (string, error) {
	return f.raw, f.err
}

type fakeStatus struct {
	tokens []string
	err    error

	mu   sync.Mutex
	keys []string
}

func (f *fakeStatus) Status(ctx context.Context, domainName, key string) ([]string, error) {
	f.mu.Lock()
	f.keys = append(f.keys, key)
	f.mu.Unlock()
	return f.tokens, f.err
}

func TestOracle_WhoisErrorMeansAvailable(t *testing.T) {
	o := NewOracle(&fakeWhois{err: errors.New("connection refused")}, nil, NewRotator(nil))

	res := o.Check(context.Background(), "flaky.com")
	if res.Err != nil {
		t.Fatalf("oracle must not surface errors, got %v", res.Err)
	}
	if !res.Available {
		t.Fatal("a failed primary lookup must bias toward available")
	}
}

func TestOracle_NotFoundMeansAvailable(t *testing.T) {
	st := &fakeStatus{tokens: []string{"active"}}
	o := NewOracle(&fakeWhois{raw: notFoundWhois}, st, NewRotator([]string{"k"}))

	res := o.Check(context.Background(), "free12345.com")
	if !res.Available {
		t.Fatal("expected available when WHOIS has no record")
	}
	if len(st.keys) != 0 {
		t.Fatal("fallback must not be consulted when WHOIS already says available")
	}
}

func TestOracle_RegisteredWithoutCredentials(t *testing.T) {
	o := NewOracle(&fakeWhois{raw: registeredWhois}, &fakeStatus{tokens: []string{"undelegated"}}, NewRotator(nil))

	res := o.Check(context.Background(), "taken.com")
	if res.Available {
		t.Fatal("empty credential pool must keep the primary verdict")
	}
}

func TestOracle_FallbackVerdicts(t *testing.T) {
	tests := []struct {
		name      string
		tokens    []string
		err       error
		available bool
	}{
		{"undelegated", []string{"undelegated"}, nil, true},
		{"inactive", []string{"marketed", "inactive"}, nil, true},
		{"active", []string{"active"}, nil, false},
		{"no tokens", nil, nil, false},
		{"request error", nil, errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &fakeStatus{tokens: tt.tokens, err: tt.err}
			o := NewOracle(&fakeWhois{raw: registeredWhois}, st, NewRotator([]string{"k"}))

			res := o.Check(context.Background(), "taken.com")
			if res.Available != tt.available {
				t.Fatalf("got available=%v, want %v", res.Available, tt.available)
			}
		})
	}
}

func TestOracle_RotatesCredentials(t *testing.T) {
	st := &fakeStatus{tokens: []string{"active"}}
	o := NewOracle(&fakeWhois{raw: registeredWhois}, st, NewRotator([]string{"k1", "k2"}))

	for i := 0; i < 4; i++ {
		o.Check(context.Background(), "taken.com")
	}

	want := []string{"k1", "k2", "k1", "k2"}
	if len(st.keys) != len(want) {
		t.Fatalf("got %d fallback calls, want %d", len(st.keys), len(want))
	}
	for i, k := range want {
		if st.keys[i] != k {
			t.Fatalf("call %d used %q, want %q", i, st.keys[i], k)
		}
	}
}
