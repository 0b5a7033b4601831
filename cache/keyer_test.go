package cache

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/trackerhealth/health"
)

const testHash = "c12fe1c06bba254a9dc9f519b335aa7c1367a88a"

func TestRequest_Normalize(t *testing.T) {
	req := Request{
		InfoHash:  " C12FE1C06BBA254A9DC9F519B335AA7C1367A88A ",
		Trackers:  []string{"udp://b", " udp://a ", "", "udp://b"},
		Blacklist: []string{"spam", " ", "spam"},
	}

	got := req.Normalize()
	if got.InfoHash != testHash {
		t.Errorf("InfoHash = %q, want %q", got.InfoHash, testHash)
	}
	if strings.Join(got.Trackers, ",") != "udp://a,udp://b" {
		t.Errorf("Trackers = %v, want [udp://a udp://b]", got.Trackers)
	}
	if strings.Join(got.Blacklist, ",") != "spam" {
		t.Errorf("Blacklist = %v, want [spam]", got.Blacklist)
	}
	if got.Timeout != health.DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", got.Timeout, health.DefaultTimeout)
	}
}

func TestDefaultKeyer_Key(t *testing.T) {
	k := NewDefaultKeyer()

	key, err := k.Key(Request{InfoHash: testHash})
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	if !strings.HasPrefix(key, "report:"+testHash+":") {
		t.Errorf("Key() = %q, want report:<hash>: prefix", key)
	}
	if suffix := key[strings.LastIndex(key, ":")+1:]; len(suffix) != 16 {
		t.Errorf("hash suffix %q has length %d, want 16", suffix, len(suffix))
	}
}

func TestDefaultKeyer_Deterministic(t *testing.T) {
	k := NewDefaultKeyer()

	tests := []struct {
		name string
		a, b Request
		same bool
	}{
		{
			name: "tracker order",
			a:    Request{InfoHash: testHash, Trackers: []string{"udp://a", "udp://b"}},
			b:    Request{InfoHash: testHash, Trackers: []string{"udp://b", "udp://a"}},
			same: true,
		},
		{
			name: "default timeout spelled out",
			a:    Request{InfoHash: testHash},
			b:    Request{InfoHash: testHash, Timeout: time.Second},
			same: true,
		},
		{
			name: "hash case",
			a:    Request{InfoHash: testHash},
			b:    Request{InfoHash: strings.ToUpper(testHash)},
			same: true,
		},
		{
			name: "different trackers",
			a:    Request{InfoHash: testHash, Trackers: []string{"udp://a"}},
			b:    Request{InfoHash: testHash, Trackers: []string{"udp://b"}},
			same: false,
		},
		{
			name: "different blacklist",
			a:    Request{InfoHash: testHash, Blacklist: []string{"a"}},
			b:    Request{InfoHash: testHash, Blacklist: []string{"b"}},
			same: false,
		},
		{
			name: "different timeout",
			a:    Request{InfoHash: testHash, Timeout: time.Second},
			b:    Request{InfoHash: testHash, Timeout: 2 * time.Second},
			same: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka, err := k.Key(tt.a)
			if err != nil {
				t.Fatalf("Key(a) error = %v", err)
			}
			kb, err := k.Key(tt.b)
			if err != nil {
				t.Fatalf("Key(b) error = %v", err)
			}
			if (ka == kb) != tt.same {
				t.Errorf("keys %q and %q: same = %v, want %v", ka, kb, ka == kb, tt.same)
			}
		})
	}
}

func TestDefaultKeyer_NoInfoHash(t *testing.T) {
	if _, err := NewDefaultKeyer().Key(Request{Trackers: []string{"udp://a"}}); !errors.Is(err, ErrNoInfoHash) {
		t.Errorf("Key() error = %v, want ErrNoInfoHash", err)
	}
}
