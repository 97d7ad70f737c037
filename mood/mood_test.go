package mood

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/melokit/core"
)

func TestDefaults(t *testing.T) {
	set := NewDefaultSet()

	moods := set.Moods()
	if len(moods) != 12 {
		t.Fatalf("内置 mood 数量 = %d, want 12", len(moods))
	}
	for _, m := range moods {
		p, err := set.Profile(string(m))
		if err != nil {
			t.Fatalf("Profile(%s) error = %v", m, err)
		}
		if p.Name == "" || len(p.SeedArtists) == 0 {
			t.Errorf("mood %s 缺少名称或种子", m)
		}
	}

	if !set.Contains(string(Default)) {
		t.Errorf("默认 mood %s 必须在词表中", Default)
	}
}

func TestProfileLookup(t *testing.T) {
	set := NewDefaultSet()

	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{"exact match", "chill", false},
		{"case insensitive", "CHILL", false},
		{"surrounding whitespace", "  party ", false},
		{"unknown mood", "melancholy", true},
		{"empty string", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := set.Profile(tt.query)
			if tt.wantErr {
				if !core.IsUnknownMood(err) {
					t.Errorf("Profile(%q) error = %v, want UNKNOWN_MOOD", tt.query, err)
				}
			} else if err != nil {
				t.Errorf("Profile(%q) error = %v", tt.query, err)
			}
		})
	}
}

func TestSeeds(t *testing.T) {
	set := NewDefaultSet()
	seeds, err := set.Seeds("rage")
	if err != nil {
		t.Fatalf("Seeds() error = %v", err)
	}
	if len(seeds) == 0 {
		t.Fatal("rage 的种子为空")
	}
	if _, err := set.Seeds("nope"); !core.IsUnknownMood(err) {
		t.Errorf("未知 mood 应返回 UNKNOWN_MOOD, got %v", err)
	}
}

func TestNewSetValidation(t *testing.T) {
	if _, err := NewSet(nil); err == nil {
		t.Error("空表应报错")
	}
	if _, err := NewSet(map[Mood]Profile{"x": {Name: "X"}}); err == nil {
		t.Error("无种子的 mood 应报错")
	}
}

func TestLoadSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "moods.yaml")
	content := `moods:
  chill:
    name: "Chill Override"
    description: "custom"
    seed_artists: ["boards of canada", "four tet"]
  study:
    name: "Study"
    description: "deep work"
    seed_artists: ["nils frahm"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	set, err := LoadSet(path)
	if err != nil {
		t.Fatalf("LoadSet() error = %v", err)
	}

	// 覆盖的 mood 整体替换
	p, err := set.Profile("chill")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Chill Override" || len(p.SeedArtists) != 2 {
		t.Errorf("chill 覆盖失败: %+v", p)
	}

	// 新增 mood 生效，未覆盖的保留内置值
	if !set.Contains("study") {
		t.Error("新增 mood study 未生效")
	}
	if !set.Contains("jazz") {
		t.Error("未覆盖的内置 mood 丢失")
	}

	if _, err := LoadSet(filepath.Join(dir, "missing.yaml")); !core.IsNotFound(err) {
		t.Errorf("缺失文件应返回 NOT_FOUND, got %v", err)
	}
}
