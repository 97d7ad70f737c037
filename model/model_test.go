package model

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/rushteam/melokit/als"
	"github.com/rushteam/melokit/core"
	"github.com/rushteam/melokit/dataset"
	"github.com/rushteam/melokit/pkg/sparse"
)

func testModel(t *testing.T) *Model {
	t.Helper()
	records := []dataset.Interaction{
		{UserID: "u1", Artist: "radiohead", PlayCount: 10},
		{UserID: "u1", Artist: "bonobo", PlayCount: 5},
		{UserID: "u1", Artist: "tycho", PlayCount: 2},
		{UserID: "u2", Artist: "radiohead", PlayCount: 7},
		{UserID: "u2", Artist: "bonobo", PlayCount: 1},
		{UserID: "u2", Artist: "muse", PlayCount: 4},
	}
	res, err := dataset.Preprocess(records, dataset.Config{MinUserInteractions: 1, MinArtistListeners: 1})
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	factors := &als.Factors{
		User: make([][]float64, res.Users.Len()),
		Item: make([][]float64, res.Artists.Len()),
		Rank: 2,
	}
	for i := range factors.User {
		factors.User[i] = []float64{float64(i + 1), 0.5}
	}
	for i := range factors.Item {
		factors.Item[i] = []float64{0.1 * float64(i+1), 1}
	}
	m, err := Build(res, factors, TrainingParams{Iterations: 15, Regularization: 0.01, Alpha: 40}, "test-v1")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return m
}

func TestBuildValidation(t *testing.T) {
	if _, err := Build(nil, nil, TrainingParams{}, ""); err == nil {
		t.Error("nil 入参应报错")
	}

	records := []dataset.Interaction{
		{UserID: "u1", Artist: "a", PlayCount: 1},
	}
	res, err := dataset.Preprocess(records, dataset.Config{MinUserInteractions: 1, MinArtistListeners: 1})
	if err != nil {
		t.Fatal(err)
	}
	bad := &als.Factors{User: make([][]float64, 99), Item: make([][]float64, 1), Rank: 2}
	if _, err := Build(res, bad, TrainingParams{}, ""); err == nil {
		t.Error("维度不匹配应报错")
	}
}

func TestModelLookups(t *testing.T) {
	m := testModel(t)

	uidx, ok := m.UserIndex("u1")
	if !ok {
		t.Fatal("u1 应在映射中")
	}
	if _, ok := m.UserIndex("stranger"); ok {
		t.Error("未知用户不应命中映射")
	}

	aidx, ok := m.ArtistIndex("radiohead")
	if !ok {
		t.Fatal("radiohead 应在映射中")
	}
	if name, _ := m.ArtistID(aidx); name != "radiohead" {
		t.Errorf("ArtistID 回查 = %q", name)
	}

	if !m.HasListened(uidx, aidx) {
		t.Error("u1 在训练数据中听过 radiohead")
	}
	midx, _ := m.ArtistIndex("muse")
	if m.HasListened(uidx, midx) {
		t.Error("u1 没听过 muse")
	}
	if m.Rank() != 2 {
		t.Errorf("Rank = %d, want 2", m.Rank())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := testModel(t)
	path := filepath.Join(t.TempDir(), "model.json")

	if err := m.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Meta.Version != "test-v1" {
		t.Errorf("Version = %q", loaded.Meta.Version)
	}
	if !reflect.DeepEqual(loaded.Users.IDs(), m.Users.IDs()) {
		t.Error("用户映射 round-trip 不一致")
	}
	if !reflect.DeepEqual(loaded.Artists.IDs(), m.Artists.IDs()) {
		t.Error("艺人映射 round-trip 不一致")
	}
	if !reflect.DeepEqual(loaded.UserFactors, m.UserFactors) {
		t.Error("用户因子 round-trip 不一致")
	}
	if !reflect.DeepEqual(loaded.ItemFactors, m.ItemFactors) {
		t.Error("物品因子 round-trip 不一致")
	}
	if !reflect.DeepEqual(loaded.Popularity, m.Popularity) {
		t.Error("热度统计 round-trip 不一致")
	}
	if !reflect.DeepEqual(loaded.Interactions, m.Interactions) {
		t.Error("交互矩阵 round-trip 不一致")
	}

	// 覆盖写不破坏已有文件：保存失败路径由临时文件兜底，这里验证正常覆盖
	if err := loaded.Save(path); err != nil {
		t.Fatalf("二次 Save() error = %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("覆盖后 Load() error = %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.json")); !core.IsNotFound(err) {
		t.Errorf("缺失文件应返回 NOT_FOUND, got %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("损坏文件应报错")
	}

	// 因子行数与映射不一致
	mismatch := filepath.Join(dir, "mismatch.json")
	content := `{"meta":{},"user_ids":["u1","u2"],"artist_ids":["a"],"user_factors":[[1]],"item_factors":[[1]]}`
	if err := os.WriteFile(mismatch, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(mismatch); err == nil {
		t.Error("维度不一致应报错")
	}
}

func TestHandle(t *testing.T) {
	h := NewHandle(nil)
	if h.Loaded() {
		t.Error("空 Handle 不应为已加载状态")
	}
	if _, err := h.Get(); !core.IsNotFound(err) {
		t.Errorf("未加载应返回 NOT_FOUND, got %v", err)
	}

	m := testModel(t)
	if old := h.Swap(m); old != nil {
		t.Error("首次 Swap 的旧模型应为 nil")
	}
	got, err := h.Get()
	if err != nil || got != m {
		t.Errorf("Get() = %v, %v", got, err)
	}

	m2 := testModel(t)
	if old := h.Swap(m2); old != m {
		t.Error("Swap 应返回被替换的旧模型")
	}
}

func TestHandleConcurrentSwap(t *testing.T) {
	h := NewHandle(testModel(t))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.Swap(testModelStatic)
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if m, err := h.Get(); err != nil || m == nil {
					t.Errorf("并发 Get 拿到空模型: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

var testModelStatic = &Model{Users: core.NewMapping(nil), Artists: core.NewMapping(nil), Interactions: &sparse.CSR{}}
