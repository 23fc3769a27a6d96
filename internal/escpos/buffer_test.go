package escpos

import (
	"bytes"
	"testing"
)

func TestBuild_TrailerAlwaysPresent(t *testing.T) {
	inputs := []string{"", "Hello", "Ticket #42\nTotal: $10.00", "漢字レシート", "emoji 🧾"}

	for _, text := range inputs {
		for _, openDrawer := range []bool{false, true} {
			buf := Build(text, openDrawer)
			if !bytes.HasSuffix(buf, FeedAndCut) {
				t.Errorf("Build(%q, %v) does not end with feed-and-cut trailer", text, openDrawer)
			}
		}
	}
}

func TestBuild_NoDrawerKickByDefault(t *testing.T) {
	buf := Build("Hello", false)
	if bytes.Contains(buf, DrawerKick) {
		t.Error("Build(_, false) must not contain the drawer-kick sequence")
	}
}

func TestBuild_DrawerKickBeforeTrailer(t *testing.T) {
	buf := Build("Hello", true)

	want := append(append([]byte{}, DrawerKick...), FeedAndCut...)
	if !bytes.HasSuffix(buf, want) {
		t.Error("drawer kick must sit immediately before the feed-and-cut trailer")
	}
	if bytes.Count(buf, DrawerKick) != 1 {
		t.Error("exactly one drawer-kick sequence expected")
	}
}

func TestBuild_Layout(t *testing.T) {
	buf := Build("Café", false)

	// Raw UTF-8 text first, then two line feeds.
	if !bytes.HasPrefix(buf, []byte("Café\n\n")) {
		t.Errorf("buffer prefix = %q; want text followed by two line feeds", buf[:minInt(len(buf), 10)])
	}

	wantLen := len("Café") + 2 + len(FeedAndCut)
	if len(buf) != wantLen {
		t.Errorf("len(Build) = %d; want %d", len(buf), wantLen)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a := Build("same input", true)
	b := Build("same input", true)
	if !bytes.Equal(a, b) {
		t.Error("Build must be deterministic")
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
