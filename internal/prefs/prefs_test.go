package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
	if len(p.RecentQueries) != 0 {
		t.Fatalf("RecentQueries = %v, want empty", p.RecentQueries)
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	prefsDir := filepath.Join(home, ".config", "finder")
	if err := os.MkdirAll(prefsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	prefsFile := filepath.Join(prefsDir, "prefs.toml")
	content := "theme = \"Slate\"\nrecent_queries = [\"keys\", \" \", \"KEYS\", \"wallet\"]\n"
	if err := os.WriteFile(prefsFile, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != "Slate" {
		t.Fatalf("Theme = %q, want %q", p.Theme, "Slate")
	}
	if want := []string{"keys", "wallet"}; !reflect.DeepEqual(p.RecentQueries, want) {
		t.Fatalf("RecentQueries = %v, want %v", p.RecentQueries, want)
	}
}

func TestSave_RoundTripsAndCreatesDirs(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "subdir", "prefs.toml")

	p := Prefs{Theme: "Kanagawa"}
	p.RememberQuery("where are my keys")
	if err := Save(prefsFile, p); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Theme != "Kanagawa" {
		t.Fatalf("Theme = %q, want %q", loaded.Theme, "Kanagawa")
	}
	if !reflect.DeepEqual(loaded.RecentQueries, []string{"where are my keys"}) {
		t.Fatalf("RecentQueries = %v", loaded.RecentQueries)
	}
}

func TestRememberQuery_MostRecentFirstDedupedAndCapped(t *testing.T) {
	var p Prefs
	for i := 0; i < MaxRecentQueries+3; i++ {
		p.RememberQuery(fmt.Sprintf("query %d", i))
	}
	if len(p.RecentQueries) != MaxRecentQueries {
		t.Fatalf("len = %d, want %d", len(p.RecentQueries), MaxRecentQueries)
	}
	if p.RecentQueries[0] != "query 12" {
		t.Fatalf("first = %q, want query 12", p.RecentQueries[0])
	}

	p.RememberQuery("  QUERY 5 ")
	if p.RecentQueries[0] != "QUERY 5" {
		t.Fatalf("first = %q, want QUERY 5", p.RecentQueries[0])
	}
	for _, q := range p.RecentQueries[1:] {
		if q == "query 5" {
			t.Fatalf("duplicate left behind: %v", p.RecentQueries)
		}
	}

	before := append([]string(nil), p.RecentQueries...)
	p.RememberQuery("   ")
	if !reflect.DeepEqual(before, p.RecentQueries) {
		t.Fatalf("blank query changed history")
	}
}

func TestLoad_EmptyThemeFallsBackToDefault(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("theme = \"\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}

func TestLoad_InvalidTOMLFallsBackToDefault(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("not valid toml {{{\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}
