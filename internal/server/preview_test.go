package server

import (
	"strings"
	"testing"
	"time"

	"resumeforge/internal/config"
)

func TestPreviewRegistryPutGet(t *testing.T) {
	pr := NewPreviewRegistry(nil, nil)
	defer pr.Close()

	id, expiry := pr.Put("<div>My Resume</div>", "resume")
	if id == "" {
		t.Fatal("Put returned empty id")
	}
	if !expiry.After(time.Now()) {
		t.Error("expiry should be in the future")
	}

	html, ok := pr.Get(id)
	if !ok {
		t.Fatal("Get should find a freshly stored preview")
	}
	if !strings.Contains(html, "<div>My Resume</div>") {
		t.Error("wrapped preview should contain the original document")
	}
	if !strings.Contains(html, defaultWatermark) {
		t.Errorf("wrapped preview should contain watermark %q", defaultWatermark)
	}
}

func TestPreviewRegistryUnknownID(t *testing.T) {
	pr := NewPreviewRegistry(nil, nil)
	defer pr.Close()

	if _, ok := pr.Get("no-such-id"); ok {
		t.Error("Get should miss on an unknown id")
	}
}

func TestPreviewRegistryExpiry(t *testing.T) {
	pr := NewPreviewRegistry(&config.PreviewConfig{TTL: 10 * time.Millisecond}, nil)
	defer pr.Close()

	id, _ := pr.Put("<p>gone soon</p>", "resume")
	time.Sleep(20 * time.Millisecond)

	if _, ok := pr.Get(id); ok {
		t.Error("Get should miss once the TTL has passed")
	}

	stats := pr.GetStats()
	if stats["active_previews"] != 0 {
		t.Errorf("active_previews = %v after expiry read, want 0", stats["active_previews"])
	}
}

func TestPreviewRegistryCapacityEviction(t *testing.T) {
	pr := NewPreviewRegistry(&config.PreviewConfig{Capacity: 2}, nil)
	defer pr.Close()

	first, _ := pr.Put("<p>one</p>", "resume")
	time.Sleep(time.Millisecond)
	second, _ := pr.Put("<p>two</p>", "resume")
	time.Sleep(time.Millisecond)
	third, _ := pr.Put("<p>three</p>", "cover")

	if _, ok := pr.Get(first); ok {
		t.Error("oldest preview should be evicted at capacity")
	}
	if _, ok := pr.Get(second); !ok {
		t.Error("second preview should survive")
	}
	if _, ok := pr.Get(third); !ok {
		t.Error("newest preview should survive")
	}
}

func TestPreviewRegistryCustomWatermark(t *testing.T) {
	pr := NewPreviewRegistry(&config.PreviewConfig{Watermark: "DRAFT ONLY"}, nil)
	defer pr.Close()

	id, _ := pr.Put("<p>doc</p>", "cover")
	html, ok := pr.Get(id)
	if !ok {
		t.Fatal("Get should find the preview")
	}
	if !strings.Contains(html, "DRAFT ONLY") {
		t.Error("wrapped preview should contain the configured watermark")
	}
	if strings.Contains(html, defaultWatermark) {
		t.Error("default watermark should not appear when overridden")
	}
}

func TestWrapPreviewHTMLStructure(t *testing.T) {
	out := wrapPreviewHTML("<p>body</p>", "MARK")

	for _, want := range []string{
		"repeating-linear-gradient",
		"backdrop-filter: blur(2px)",
		"rotate(-25deg)",
		"MARK",
		"<p>body</p>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("wrapped preview missing %q", want)
		}
	}
}
