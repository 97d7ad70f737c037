package mood

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/melokit/core"
)

// fileConfig 是 yaml 配置文件的顶层结构。
type fileConfig struct {
	Moods map[Mood]Profile `yaml:"moods"`
}

// LoadSet 从 yaml 文件加载词表，覆盖内置配置。
//
// 文件中出现的 mood 整体替换内置配置；未出现的保留内置值。
// 示例：
//
//	moods:
//	  chill:
//	    name: "Chill"
//	    description: "Relax and unwind"
//	    seed_artists: ["bonobo", "tycho"]
func LoadSet(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleMood, core.ErrorCodeNotFound,
			"mood: read config: "+err.Error())
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, core.NewDomainError(core.ModuleMood, core.ErrorCodeInvalidInput,
			"mood: parse config: "+err.Error())
	}
	profiles := Defaults()
	for m, p := range cfg.Moods {
		profiles[m] = p
	}
	return NewSet(profiles)
}
