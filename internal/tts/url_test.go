package tts

import (
	"net/url"
	"strings"
	"testing"
)

func TestBuildURL(t *testing.T) {
	raw := BuildURL("hello,world", "vi")

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("BuildURL produced unparseable URL %q: %v", raw, err)
	}
	if u.Scheme != "https" || u.Host != "translate.google.com" || u.Path != "/translate_tts" {
		t.Errorf("unexpected endpoint: %s://%s%s", u.Scheme, u.Host, u.Path)
	}

	q := u.Query()
	if got := q.Get("q"); got != "hello,world" {
		t.Errorf("q = %q, want %q", got, "hello,world")
	}
	if got := q.Get("tl"); got != "vi" {
		t.Errorf("tl = %q, want %q", got, "vi")
	}
	if got := q.Get("ie"); got != "UTF-8" {
		t.Errorf("ie = %q, want %q", got, "UTF-8")
	}
	if got := q.Get("client"); got != "tw-ob" {
		t.Errorf("client = %q, want %q", got, "tw-ob")
	}
}

func TestBuildURLEscapesUtterance(t *testing.T) {
	raw := BuildURL("xin chào & tạm biệt?", "vi")

	if strings.Contains(raw, "chào") || strings.Contains(raw, " ") {
		t.Errorf("utterance not percent-encoded: %q", raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("unparseable URL %q: %v", raw, err)
	}
	if got := u.Query().Get("q"); got != "xin chào & tạm biệt?" {
		t.Errorf("round-tripped q = %q", got)
	}
}

func TestBuildURLs(t *testing.T) {
	urls := BuildURLs([]string{"one", "two"}, "en")
	if len(urls) != 2 {
		t.Fatalf("BuildURLs returned %d urls, want 2", len(urls))
	}
	for i, want := range []string{"one", "two"} {
		u, err := url.Parse(urls[i])
		if err != nil {
			t.Fatalf("unparseable URL %q: %v", urls[i], err)
		}
		if got := u.Query().Get("q"); got != want {
			t.Errorf("urls[%d] q = %q, want %q", i, got, want)
		}
		if got := u.Query().Get("tl"); got != "en" {
			t.Errorf("urls[%d] tl = %q, want %q", i, got, "en")
		}
	}
}
