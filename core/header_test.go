package core

import (
	"net/http"
	"testing"
)

func TestHeader_CaseInsensitive(t *testing.T) {
	var h Header
	h.Set("Content-Type", "text/plain")
	h.Set("content-type", "application/json")

	if h.Len() != 1 {
		t.Fatalf("expected 1 header, got %d", h.Len())
	}
	if got := h.Get("CONTENT-TYPE"); got != "application/json" {
		t.Errorf("got %q", got)
	}
	if keys := h.Keys(); keys[0] != "Content-Type" {
		t.Errorf("expected original casing, got %q", keys[0])
	}
}

func TestHeader_AddAndDel(t *testing.T) {
	var h Header
	h.Add("Vary", "Accept")
	h.Add("vary", "Origin")
	if vals := h.Values("VARY"); len(vals) != 2 {
		t.Fatalf("expected 2 values, got %v", vals)
	}
	h.Del("Vary")
	if h.Has("vary") {
		t.Error("expected header removed")
	}
}

func TestHeader_CloneIsDeep(t *testing.T) {
	h := NewHeader("A", "1")
	c := h.Clone()
	c.Set("A", "2")
	if h.Get("A") != "1" {
		t.Error("clone shares state with original")
	}
}

func TestHeader_HTTPRoundTrip(t *testing.T) {
	src := http.Header{}
	src.Add("X-B", "2")
	src.Add("X-A", "1")
	src.Add("X-A", "3")

	h := HeaderFrom(src)
	if keys := h.Keys(); keys[0] != "X-A" || keys[1] != "X-B" {
		t.Errorf("expected sorted keys, got %v", keys)
	}
	back := h.HTTP()
	if vals := back.Values("X-A"); len(vals) != 2 || vals[1] != "3" {
		t.Errorf("expected [1 3], got %v", vals)
	}
}
