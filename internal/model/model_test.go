package model_test

import (
	"errors"
	"testing"

	"github.com/nikbrunner/places/internal/location"
	"github.com/nikbrunner/places/internal/metadata"
	"github.com/nikbrunner/places/internal/model"
)

// Helper functions for pointers
func stringPtr(s string) *string { return &s }

func mustBookmark(t *testing.T, params model.NewBookmarkParams) *model.Bookmark {
	t.Helper()
	b, err := model.NewBookmark(params)
	if err != nil {
		t.Fatalf("NewBookmark(%q): %v", params.Target, err)
	}
	t.Cleanup(b.Close)
	return b
}

func TestNewBookmark_InvalidLocation(t *testing.T) {
	_, err := model.NewBookmark(model.NewBookmarkParams{Target: "not a uri"})
	if !errors.Is(err, location.ErrInvalidLocation) {
		t.Fatalf("expected ErrInvalidLocation, got %v", err)
	}
}

func TestBookmark_Name(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		customName *string
		want       string
	}{
		{"derived from target", "file:///home/user/Documents", nil, "Documents"},
		{"custom name wins", "file:///srv/data", stringPtr("Shared Data"), "Shared Data"},
		{"empty custom name is none", "file:///srv/data", stringPtr(""), "data"},
		{"remote host", "smb://nas/", nil, "nas"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustBookmark(t, model.NewBookmarkParams{Target: tt.target, CustomName: tt.customName})
			if got := b.Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBookmark_CopyIsIndependent(t *testing.T) {
	orig := mustBookmark(t, model.NewBookmarkParams{Target: "file:///srv/data", CustomName: stringPtr("Data")})
	cp := orig.Copy()
	defer cp.Close()

	if cp == orig {
		t.Fatal("Copy returned the same pointer")
	}
	if !cp.Equal(orig) {
		t.Fatal("copy should be structurally equal")
	}

	cp.SetCustomName(stringPtr("Other"))
	if orig.Name() != "Data" {
		t.Errorf("changing the copy changed the original: %q", orig.Name())
	}
}

func TestBookmark_Equal(t *testing.T) {
	a := mustBookmark(t, model.NewBookmarkParams{Target: "file:///tmp"})
	b := mustBookmark(t, model.NewBookmarkParams{Target: "/tmp"})
	c := mustBookmark(t, model.NewBookmarkParams{Target: "file:///tmp", CustomName: stringPtr("Temp")})
	d := mustBookmark(t, model.NewBookmarkParams{Target: "file:///var"})

	if !a.Equal(b) {
		t.Error("same target, no names: expected equal")
	}
	if a.Equal(c) {
		t.Error("custom name state differs: expected not equal")
	}
	if a.Equal(d) {
		t.Error("different targets: expected not equal")
	}
}

func TestBookmark_SetCustomNameNotifies(t *testing.T) {
	b := mustBookmark(t, model.NewBookmarkParams{Target: "file:///srv/data"})

	var names []string
	id := b.OnNameChanged(func(bm *model.Bookmark) { names = append(names, bm.Name()) })

	b.SetCustomName(stringPtr("Shared"))
	b.SetCustomName(stringPtr("Shared")) // unchanged, no notification
	b.SetCustomName(nil)

	if len(names) != 2 || names[0] != "Shared" || names[1] != "data" {
		t.Fatalf("unexpected notifications: %v", names)
	}

	b.RemoveObserver(id)
	b.SetCustomName(stringPtr("Again"))
	if len(names) != 2 {
		t.Errorf("removed observer was called: %v", names)
	}
}

func TestBookmark_IconFollowsTarget(t *testing.T) {
	provider := metadata.NewStatic(metadata.Info{Exists: true, IsDir: true})
	loc := location.MustParse("file:///srv/data")

	b := mustBookmark(t, model.NewBookmarkParams{Target: loc.String(), Provider: provider})
	if b.Icon() != model.IconFolder {
		t.Fatalf("Icon() = %q, want folder", b.Icon())
	}
	if b.Unresolvable() {
		t.Fatal("existing target reported unresolvable")
	}

	notified := 0
	b.OnNameChanged(func(*model.Bookmark) { notified++ })

	// cached until the target reports a change
	provider.Set(loc, metadata.Info{})
	if b.Icon() != model.IconFolder {
		t.Fatal("icon should be cached until the target changes")
	}

	provider.Touch(loc)
	if notified != 1 {
		t.Errorf("expected 1 notification, got %d", notified)
	}
	if b.Icon() != model.IconMissing {
		t.Errorf("Icon() = %q, want %q", b.Icon(), model.IconMissing)
	}
	if !b.Unresolvable() {
		t.Error("missing target should be unresolvable")
	}
}

func TestBookmark_IconKinds(t *testing.T) {
	provider := metadata.NewStatic(metadata.Info{Exists: true})
	home := location.MustParse("file:///home/me")
	root := location.MustParse("file:///")
	provider.Set(home, metadata.Info{Exists: true, IsDir: true, Home: true})
	provider.Set(root, metadata.Info{Exists: true, IsDir: true, Root: true})

	tests := []struct {
		target string
		want   string
	}{
		{home.String(), model.IconHome},
		{root.String(), model.IconRoot},
		{"file:///etc/hosts", model.IconFile},
		{"sftp://host/srv", model.IconRemote},
	}

	for _, tt := range tests {
		b := mustBookmark(t, model.NewBookmarkParams{Target: tt.target, Provider: provider})
		if got := b.Icon(); got != tt.want {
			t.Errorf("%s: Icon() = %q, want %q", tt.target, got, tt.want)
		}
	}
}

func TestBookmark_CloseTearsDownWatch(t *testing.T) {
	provider := metadata.NewStatic(metadata.Info{Exists: true, IsDir: true})
	loc := location.MustParse("file:///srv/data")

	b, err := model.NewBookmark(model.NewBookmarkParams{Target: loc.String(), Provider: provider})
	if err != nil {
		t.Fatal(err)
	}
	if provider.Watchers(loc) != 1 {
		t.Fatalf("expected 1 watcher, got %d", provider.Watchers(loc))
	}

	called := false
	b.OnNameChanged(func(*model.Bookmark) { called = true })

	b.Close()
	b.Close()

	if provider.Watchers(loc) != 0 {
		t.Errorf("expected watch to be cancelled, %d left", provider.Watchers(loc))
	}
	provider.Touch(loc)
	if called {
		t.Error("observer called after Close")
	}
}
