// Package mood 定义封闭的 mood 词表及其种子艺人配置。
//
// mood 是冷启动的主入口：未知用户拿不到因子向量，但总能指定（或被
// 指定）一个 mood，由种子艺人经相似扩展 + 热度混合产出结果。
// 词表是封闭集合，启动时加载一次，请求期间不可变；任何不在词表内的
// 名字都返回 UNKNOWN_MOOD，绝不做自由字符串分发。
package mood

import (
	"sort"
	"strings"

	"github.com/rushteam/melokit/core"
)

// Mood 是词表中的一个成员。
type Mood string

const (
	Heartbreak Mood = "heartbreak"
	Love       Mood = "love"
	FeelGood   Mood = "feelgood"
	Rage       Mood = "rage"
	Motivation Mood = "motivation"
	Party      Mood = "party"
	Chill      Mood = "chill"
	LateNight  Mood = "latenight"
	Rock       Mood = "rock"
	Classical  Mood = "classical"
	Jazz       Mood = "jazz"
	Focus      Mood = "focus"
)

// Default 是未指定 mood 时的兜底选择。
const Default = Chill

// Profile 是一个 mood 的展示信息与种子艺人集合。
type Profile struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	SeedArtists []string `yaml:"seed_artists"`
}

// Defaults 返回内置的 12 个 mood 配置。
// 种子艺人为小写规范名，与训练映射的 key 一致。
func Defaults() map[Mood]Profile {
	return map[Mood]Profile{
		Heartbreak: {
			Name:        "Heartbreak",
			Description: "For when you need to feel it all",
			SeedArtists: []string{"radiohead", "bon iver", "elliott smith", "the smiths", "jeff buckley"},
		},
		Love: {
			Name:        "Romance",
			Description: "Perfect for those in love",
			SeedArtists: []string{"arctic monkeys", "the xx", "vampire weekend", "beach house", "mazzy star"},
		},
		FeelGood: {
			Name:        "Feel Good",
			Description: "Uplifting and positive vibes",
			SeedArtists: []string{"the beatles", "coldplay", "phoenix", "mgmt", "vampire weekend"},
		},
		Rage: {
			Name:        "Rage",
			Description: "Let it all out",
			SeedArtists: []string{"rage against the machine", "system of a down", "metallica", "slipknot", "tool"},
		},
		Motivation: {
			Name:        "Motivation",
			Description: "Get pumped up",
			SeedArtists: []string{"queen", "imagine dragons", "foo fighters", "linkin park", "muse"},
		},
		Party: {
			Name:        "Party",
			Description: "Dance the night away",
			SeedArtists: []string{"daft punk", "calvin harris", "david guetta", "avicii", "deadmau5"},
		},
		Chill: {
			Name:        "Chill",
			Description: "Relax and unwind",
			SeedArtists: []string{"bonobo", "tycho", "zero 7", "air", "thievery corporation"},
		},
		LateNight: {
			Name:        "Late Night",
			Description: "For those midnight hours",
			SeedArtists: []string{"the weeknd", "massive attack", "portishead", "fka twigs", "james blake"},
		},
		Rock: {
			Name:        "Rock Out",
			Description: "Classic rock energy",
			SeedArtists: []string{"led zeppelin", "pink floyd", "the rolling stones", "ac-dc", "the who"},
		},
		Classical: {
			Name:        "Classical",
			Description: "Timeless elegance",
			SeedArtists: []string{"ludovico einaudi", "yiruma", "ólafur arnalds", "max richter", "nils frahm"},
		},
		Jazz: {
			Name:        "Jazz",
			Description: "Smooth and sophisticated",
			SeedArtists: []string{"miles davis", "john coltrane", "billie holiday", "ella fitzgerald", "chet baker"},
		},
		Focus: {
			Name:        "Focus",
			Description: "Concentration music",
			SeedArtists: []string{"ludovico einaudi", "max richter", "ólafur arnalds", "nils frahm", "explosions in the sky"},
		},
	}
}

// Set 是加载后的封闭词表。构建后只读，可并发查询。
type Set struct {
	profiles map[Mood]Profile
}

// NewSet 由给定配置构建词表。每个 mood 必须至少有一个种子艺人。
func NewSet(profiles map[Mood]Profile) (*Set, error) {
	if len(profiles) == 0 {
		return nil, core.NewDomainError(core.ModuleMood, core.ErrorCodeInvalidInput,
			"mood: empty profile table")
	}
	for m, p := range profiles {
		if len(p.SeedArtists) == 0 {
			return nil, core.NewDomainError(core.ModuleMood, core.ErrorCodeInvalidInput,
				"mood: profile "+string(m)+" has no seed artists")
		}
	}
	// 拷贝一份，外部修改不影响词表
	copied := make(map[Mood]Profile, len(profiles))
	for m, p := range profiles {
		copied[m] = p
	}
	return &Set{profiles: copied}, nil
}

// NewDefaultSet 构建内置词表。
func NewDefaultSet() *Set {
	s, _ := NewSet(Defaults())
	return s
}

// Profile 查询 mood 配置；不在词表内返回 UNKNOWN_MOOD。
func (s *Set) Profile(name string) (Profile, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(name)))
	p, ok := s.profiles[m]
	if !ok {
		return Profile{}, core.NewDomainError(core.ModuleMood, core.ErrorCodeUnknownMood,
			"mood: unknown mood \""+name+"\"")
	}
	return p, nil
}

// Seeds 查询 mood 的种子艺人列表。
func (s *Set) Seeds(name string) ([]string, error) {
	p, err := s.Profile(name)
	if err != nil {
		return nil, err
	}
	return p.SeedArtists, nil
}

// Contains 报告 mood 是否在词表内。
func (s *Set) Contains(name string) bool {
	_, ok := s.profiles[Mood(strings.ToLower(strings.TrimSpace(name)))]
	return ok
}

// Moods 返回词表中的全部 mood（排序，确定性）。
func (s *Set) Moods() []Mood {
	out := make([]Mood, 0, len(s.profiles))
	for m := range s.profiles {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
