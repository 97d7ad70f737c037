package dataset

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/rushteam/melokit/core"
	"github.com/rushteam/melokit/pkg/sparse"
)

// Result 是预处理产物：训练分区的置信度矩阵、ID 映射、热度统计与划分。
type Result struct {
	// Matrix 是训练分区的稀疏置信度矩阵（行=用户，列=艺人）。
	// 非零值为 1 + alpha*play_count；零表示"未观测"，不是负反馈。
	Matrix *sparse.CSR

	// Users / Artists 是原始 ID ↔ 稠密下标的双射映射
	Users   *core.Mapping
	Artists *core.Mapping

	// Popularity 是每个艺人在训练分区的总置信度质量（榜单排序依据）
	Popularity []float64

	// Listeners 是每个艺人在训练分区的听众数
	Listeners []int

	// Train / Test 是按用户划分后的聚合交互（play_count 已求和）
	Train []Interaction
	Test  []Interaction

	// Alpha 是构建置信度所用的系数，TestMatrix 用同一变换
	Alpha float64

	Stats Stats
}

// TestMatrix 把测试分区转成与 Matrix 同形状的置信度矩阵，
// 供离线评估使用（als.Evaluate）。没有测试交互时矩阵为全零。
func (r *Result) TestMatrix() *sparse.CSR {
	cells := make([]sparse.Cell, 0, len(r.Test))
	for _, rec := range r.Test {
		u, ok := r.Users.Index(rec.UserID)
		if !ok {
			continue
		}
		a, ok := r.Artists.Index(rec.Artist)
		if !ok {
			continue
		}
		cells = append(cells, sparse.Cell{Row: u, Col: a, Value: 1 + r.Alpha*float64(rec.PlayCount)})
	}
	return sparse.New(r.Users.Len(), r.Artists.Len(), cells)
}

// Preprocess 执行完整预处理流程：
//  1. 丢弃无效行（空 ID / 非正播放次数）
//  2. 艺人名清洗
//  3. 聚合重复 (用户, 艺人) 对（播放次数求和）
//  4. 迭代过滤稀疏用户/艺人直到稳定
//  5. 构建稠密 ID 映射
//  6. 按用户 80/20 划分训练/测试
//  7. 训练分区转为置信度 CSR 矩阵
//
// 输入为空、全部无效或过滤后为空时返回 DATA_QUALITY 错误。
func Preprocess(records []Interaction, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()

	stats := Stats{RawRows: len(records)}
	if len(records) == 0 {
		return nil, dataQualityErr("no interaction records supplied")
	}

	// 1+2. 清洗
	cleaned := make([]Interaction, 0, len(records))
	for _, r := range records {
		artist := CleanArtist(r.Artist)
		if r.UserID == "" || artist == "" || r.PlayCount <= 0 {
			stats.InvalidRows++
			continue
		}
		cleaned = append(cleaned, Interaction{UserID: r.UserID, Artist: artist, PlayCount: r.PlayCount})
	}
	if len(cleaned) == 0 {
		return nil, dataQualityErr("all interaction records invalid")
	}

	// 3. 聚合重复对
	type pair struct{ user, artist string }
	agg := make(map[pair]int64, len(cleaned))
	for _, r := range cleaned {
		p := pair{r.UserID, r.Artist}
		if _, ok := agg[p]; ok {
			stats.DuplicatePairs++
		}
		agg[p] += r.PlayCount
	}

	interactions := make([]Interaction, 0, len(agg))
	for p, count := range agg {
		interactions = append(interactions, Interaction{UserID: p.user, Artist: p.artist, PlayCount: count})
	}
	// map 遍历无序，排序以保证确定性
	sortInteractions(interactions)

	stats.UsersBefore, stats.ArtistsBefore = countDistinct(interactions)

	// 4. 迭代稀疏过滤
	var iterations int
	interactions, iterations = filterSparse(interactions, cfg)
	stats.FilterIterations = iterations
	if len(interactions) == 0 {
		return nil, dataQualityErr(fmt.Sprintf(
			"no interactions survive sparsity filtering (min_user_interactions=%d, min_artist_listeners=%d)",
			cfg.MinUserInteractions, cfg.MinArtistListeners))
	}
	stats.UsersAfter, stats.ArtistsAfter = countDistinct(interactions)
	stats.RowsAfter = len(interactions)

	// 5. 稠密映射（排序后的首次出现顺序，确定性）
	users := core.NewMapping(nil)
	artists := core.NewMapping(nil)
	for _, r := range interactions {
		users.Add(r.UserID)
		artists.Add(r.Artist)
	}

	// 6. 按用户划分
	train, test := splitPerUser(interactions, users, cfg)
	stats.TrainRows, stats.TestRows = len(train), len(test)

	// 7. 训练分区 → 置信度矩阵
	cells := make([]sparse.Cell, 0, len(train))
	stats.MinConfidence, stats.MaxConfidence = 0, 0
	for _, r := range train {
		u, _ := users.Index(r.UserID)
		a, _ := artists.Index(r.Artist)
		conf := 1 + cfg.Alpha*float64(r.PlayCount)
		cells = append(cells, sparse.Cell{Row: u, Col: a, Value: conf})
		if stats.MinConfidence == 0 || conf < stats.MinConfidence {
			stats.MinConfidence = conf
		}
		if conf > stats.MaxConfidence {
			stats.MaxConfidence = conf
		}
	}
	matrix := sparse.New(users.Len(), artists.Len(), cells)
	stats.Sparsity = matrix.Sparsity()

	return &Result{
		Matrix:     matrix,
		Users:      users,
		Artists:    artists,
		Popularity: matrix.ColSums(),
		Listeners:  matrix.ColCounts(),
		Train:      train,
		Test:       test,
		Alpha:      cfg.Alpha,
		Stats:      stats,
	}, nil
}

func dataQualityErr(msg string) error {
	return core.NewDomainError(core.ModuleDataset, core.ErrorCodeDataQuality, "dataset: "+msg)
}

func sortInteractions(interactions []Interaction) {
	sort.Slice(interactions, func(i, j int) bool {
		if interactions[i].UserID != interactions[j].UserID {
			return interactions[i].UserID < interactions[j].UserID
		}
		return interactions[i].Artist < interactions[j].Artist
	})
}

func countDistinct(interactions []Interaction) (users, artists int) {
	us := make(map[string]struct{})
	as := make(map[string]struct{})
	for _, r := range interactions {
		us[r.UserID] = struct{}{}
		as[r.Artist] = struct{}{}
	}
	return len(us), len(as)
}

// filterSparse 反复过滤交互太少的用户与听众太少的艺人，直到一轮过滤
// 不再减少行数，或达到迭代上限。
func filterSparse(interactions []Interaction, cfg Config) ([]Interaction, int) {
	iteration := 0
	for iteration < cfg.MaxFilterIterations {
		iteration++
		before := len(interactions)

		userCounts := make(map[string]int)
		for _, r := range interactions {
			userCounts[r.UserID]++
		}
		kept := interactions[:0]
		for _, r := range interactions {
			if userCounts[r.UserID] >= cfg.MinUserInteractions {
				kept = append(kept, r)
			}
		}
		interactions = kept

		artistCounts := make(map[string]int)
		for _, r := range interactions {
			artistCounts[r.Artist]++
		}
		kept = interactions[:0]
		for _, r := range interactions {
			if artistCounts[r.Artist] >= cfg.MinArtistListeners {
				kept = append(kept, r)
			}
		}
		interactions = kept

		if len(interactions) == before {
			break
		}
	}
	return interactions, iteration
}

// splitPerUser 按用户做 80/20 划分：每个用户至少留一条在训练分区；
// 交互数 ≥2 时测试分区也至少留一条。单条交互的用户整体进训练分区。
func splitPerUser(interactions []Interaction, users *core.Mapping, cfg Config) (train, test []Interaction) {
	byUser := make([][]Interaction, users.Len())
	for _, r := range interactions {
		u, _ := users.Index(r.UserID)
		byUser[u] = append(byUser[u], r)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	train = make([]Interaction, 0, len(interactions))
	test = make([]Interaction, 0, len(interactions)/4)

	// 按用户下标顺序遍历，划分结果只依赖 Seed 与输入
	for u := 0; u < len(byUser); u++ {
		rows := byUser[u]
		n := len(rows)
		if n <= 1 {
			train = append(train, rows...)
			continue
		}
		nTest := int(float64(n) * cfg.TestFraction)
		if nTest < 1 {
			nTest = 1
		}
		if nTest >= n {
			nTest = n - 1
		}
		perm := rng.Perm(n)
		inTest := make(map[int]bool, nTest)
		for _, k := range perm[:nTest] {
			inTest[k] = true
		}
		for k, r := range rows {
			if inTest[k] {
				test = append(test, r)
			} else {
				train = append(train, r)
			}
		}
	}
	return train, test
}
