package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/jonwraymond/trackerhealth/metainfo"
)

func constScraper(seeds int) Scraper {
	return ScraperFunc(func(context.Context, string, metainfo.InfoHash) (Result, error) {
		return Result{Complete: seeds}, nil
	})
}

func TestRegistry_Scrape(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("udp", constScraper(1)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reg.Register("HTTPS", constScraper(2)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		tracker string
		want    int
		wantErr error
	}{
		{tracker: "udp://tracker.example:1337", want: 1},
		{tracker: "https://tracker.example/announce", want: 2},
		{tracker: "UDP://tracker.example:1337", want: 1},
		{tracker: "wss://tracker.example", wantErr: ErrUnsupportedScheme},
		{tracker: "tracker.example", wantErr: ErrInvalidTracker},
		{tracker: "://bad", wantErr: ErrInvalidTracker},
	}

	for _, tt := range tests {
		t.Run(tt.tracker, func(t *testing.T) {
			res, err := reg.Scrape(context.Background(), tt.tracker, metainfo.InfoHash{})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Scrape() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Scrape() error = %v", err)
			}
			if res.Complete != tt.want {
				t.Errorf("Complete = %d, want %d", res.Complete, tt.want)
			}
		})
	}
}

func TestRegistry_UnsupportedMessage(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Scrape(context.Background(), "wss://tracker.example", metainfo.InfoHash{})
	want := `unsupported tracker scheme "wss"`
	if err == nil || err.Error() != want {
		t.Errorf("Scrape() error = %v, want %q", err, want)
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("udp", constScraper(1)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reg.Register("UDP", constScraper(1)); err == nil {
		t.Error("Register() duplicate should fail")
	}
	if err := reg.Register("", constScraper(1)); err == nil {
		t.Error("Register() empty scheme should fail")
	}
	if err := reg.Register("http", nil); err == nil {
		t.Error("Register() nil scraper should fail")
	}

	got := reg.Schemes()
	if len(got) != 1 || got[0] != "udp" {
		t.Errorf("Schemes() = %v, want [udp]", got)
	}
}
