package dataset

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rushteam/melokit/core"
)

// LoadTSV 从制表符分隔的文件读取交互记录，每行：
//
//	user_id<TAB>artist_name<TAB>play_count
//
// 行为：
//   - 首行若是表头（play_count 列不是数字）自动跳过
//   - 字段数不足或 play_count 非法的行计入坏行数并跳过
//   - 全部行都无效时返回 DATA_QUALITY
func LoadTSV(path string) ([]Interaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeDataQuality,
			fmt.Sprintf("dataset: open %s: %v", path, err))
	}
	defer f.Close()

	var (
		records []Interaction
		bad     int
		lineNo  int
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			bad++
			continue
		}
		plays, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
		if err != nil {
			if lineNo == 1 {
				// 表头
				continue
			}
			bad++
			continue
		}
		records = append(records, Interaction{
			UserID:    strings.TrimSpace(fields[0]),
			Artist:    fields[1],
			PlayCount: plays,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeDataQuality,
			fmt.Sprintf("dataset: read %s: %v", path, err))
	}
	if len(records) == 0 {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeDataQuality,
			fmt.Sprintf("dataset: no usable rows in %s (%d bad rows)", path, bad))
	}
	return records, nil
}
