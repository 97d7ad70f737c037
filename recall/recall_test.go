package recall

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rushteam/melokit/core"
	"github.com/rushteam/melokit/model"
	"github.com/rushteam/melokit/pkg/sparse"
	"github.com/rushteam/melokit/store"
)

// 手工构造的小模型：因子可控，分数可以精确断言。
//
//	艺人因子: a=[1,0] b=[0.9,0.1] c=[0,1] d=[0,0]
//	用户 u1=[1,0]（训练中听过 a），u2=[0,1]
func newTestModel() *model.Model {
	return &model.Model{
		Users:   core.NewMapping([]string{"u1", "u2"}),
		Artists: core.NewMapping([]string{"a", "b", "c", "d"}),
		UserFactors: [][]float64{
			{1, 0},
			{0, 1},
		},
		ItemFactors: [][]float64{
			{1, 0},
			{0.9, 0.1},
			{0, 1},
			{0, 0},
		},
		Popularity: []float64{100, 50, 80, 10},
		Listeners:  []int{3, 2, 4, 1},
		Interactions: sparse.New(2, 4, []sparse.Cell{
			{Row: 0, Col: 0, Value: 41},
			{Row: 1, Col: 2, Value: 81},
		}),
	}
}

func itemIDs(items []*core.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func equalIDs(got []*core.Item, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i].ID != want[i] {
			return false
		}
	}
	return true
}

func TestFactorRecall(t *testing.T) {
	m := newTestModel()

	t.Run("excludes listened artists", func(t *testing.T) {
		r := &Factor{Model: m, UserIndex: 0, TopK: 4, ExcludeListened: true}
		items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "u1"})
		if err != nil {
			t.Fatalf("Recall() error = %v", err)
		}
		// u1 的分数: b=0.9, c=0, d=0；a 被排除；平分按下标升序
		if !equalIDs(items, "b", "c", "d") {
			t.Errorf("结果 = %v, want [b c d]", itemIDs(items))
		}
		if items[0].Score != 0.9 {
			t.Errorf("b 的分数 = %v, want 0.9", items[0].Score)
		}
	})

	t.Run("keeps listened without exclusion", func(t *testing.T) {
		r := &Factor{Model: m, UserIndex: 0, TopK: 2}
		items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "u1"})
		if err != nil {
			t.Fatalf("Recall() error = %v", err)
		}
		if !equalIDs(items, "a", "b") {
			t.Errorf("结果 = %v, want [a b]", itemIDs(items))
		}
	})

	t.Run("invalid user index returns nothing", func(t *testing.T) {
		r := &Factor{Model: m, UserIndex: 99}
		items, err := r.Recall(context.Background(), &core.RecommendContext{})
		if err != nil || len(items) != 0 {
			t.Errorf("越界下标应返回空: %v, %v", items, err)
		}
	})
}

func TestSimilarRecall(t *testing.T) {
	m := newTestModel()
	r := &Similar{Model: m, ArtistIndex: 0, TopK: 4}
	items, err := r.Recall(context.Background(), &core.RecommendContext{})
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}

	// a 的相似: b=0.9/|b|≈0.9939, c=0, d=0（零范数），自身排除
	if !equalIDs(items, "b", "c", "d") {
		t.Fatalf("结果 = %v, want [b c d]", itemIDs(items))
	}
	wantSim := 0.9 / math.Hypot(0.9, 0.1)
	if math.Abs(items[0].Score-wantSim) > 1e-12 {
		t.Errorf("b 的余弦相似度 = %v, want %v", items[0].Score, wantSim)
	}
	for _, it := range items {
		if it.ID == "a" {
			t.Error("查询艺人自身不应出现在结果中")
		}
	}
	if items[1].Score != 0 || items[2].Score != 0 {
		t.Error("正交与零范数向量的相似度应为 0")
	}
}

func TestHotRecall(t *testing.T) {
	m := newTestModel()

	t.Run("from model popularity", func(t *testing.T) {
		r := &Hot{Model: m, TopK: 3}
		items, err := r.Recall(context.Background(), &core.RecommendContext{})
		if err != nil {
			t.Fatalf("Recall() error = %v", err)
		}
		if !equalIDs(items, "a", "c", "b") {
			t.Fatalf("榜单 = %v, want [a c b]", itemIDs(items))
		}
		if items[0].Score != 100 {
			t.Errorf("a 的热度 = %v, want 100", items[0].Score)
		}
		if got := items[0].Meta["listeners"]; got != 3 {
			t.Errorf("a 的听众数 = %v, want 3", got)
		}
	})

	t.Run("store takes precedence", func(t *testing.T) {
		kv := store.NewMemoryStore()
		defer kv.Close()
		ctx := context.Background()
		kv.ZAdd(ctx, "charts", 7, "x")
		kv.ZAdd(ctx, "charts", 9, "y")
		r := &Hot{Model: m, Store: kv, Key: "charts", TopK: 2}
		items, err := r.Recall(context.Background(), &core.RecommendContext{})
		if err != nil {
			t.Fatalf("Recall() error = %v", err)
		}
		if !equalIDs(items, "y", "x") {
			t.Errorf("预热榜单 = %v, want [y x]", itemIDs(items))
		}
	})

	t.Run("empty store falls back to model", func(t *testing.T) {
		kv := store.NewMemoryStore()
		defer kv.Close()
		r := &Hot{Model: m, Store: kv, Key: "charts", TopK: 1}
		items, err := r.Recall(context.Background(), &core.RecommendContext{})
		if err != nil {
			t.Fatalf("Recall() error = %v", err)
		}
		if !equalIDs(items, "a") {
			t.Errorf("兜底榜单 = %v, want [a]", itemIDs(items))
		}
	})
}

// fakeSource 是测试用召回源。
type fakeSource struct {
	name  string
	items map[string]float64
	err   error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Recall(_ context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*core.Item
	for id, score := range f.items {
		it := core.NewItem(id)
		it.Score = score
		out = append(out, it)
	}
	return out, nil
}

func TestFanoutMergeSum(t *testing.T) {
	n := &Fanout{
		Sources: []Source{
			&fakeSource{name: "s1", items: map[string]float64{"a": 0.5, "b": 0.4}},
			&fakeSource{name: "s2", items: map[string]float64{"b": 0.4, "c": 0.3}},
		},
		Merge: MergeSum,
	}
	items, err := n.Recall(context.Background(), &core.RecommendContext{})
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	// b 被两个源命中: 0.4+0.4=0.8 > a 0.5 > c 0.3
	if !equalIDs(items, "b", "a", "c") {
		t.Fatalf("合并结果 = %v, want [b a c]", itemIDs(items))
	}
	if items[0].Score != 0.8 {
		t.Errorf("b 的累加分数 = %v, want 0.8", items[0].Score)
	}
}

func TestFanoutSkipsFailedSource(t *testing.T) {
	n := &Fanout{
		Sources: []Source{
			&fakeSource{name: "bad", err: errors.New("boom")},
			&fakeSource{name: "ok", items: map[string]float64{"a": 1}},
		},
		Merge: MergeFirst,
	}
	items, err := n.Recall(context.Background(), &core.RecommendContext{})
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if !equalIDs(items, "a") {
		t.Errorf("失败源应被跳过: %v", itemIDs(items))
	}
}

func TestFanoutDeterministic(t *testing.T) {
	n := &Fanout{
		Sources: []Source{
			&fakeSource{name: "s1", items: map[string]float64{"x": 0.3, "y": 0.3, "z": 0.3}},
			&fakeSource{name: "s2", items: map[string]float64{"w": 0.3}},
		},
		MaxConcurrent: 1,
		Merge:         MergeMax,
	}
	first, err := n.Recall(context.Background(), &core.RecommendContext{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := n.Recall(context.Background(), &core.RecommendContext{})
		if err != nil {
			t.Fatal(err)
		}
		if !equalIDs(again, itemIDs(first)...) {
			t.Fatalf("多次召回顺序不一致: %v vs %v", itemIDs(again), itemIDs(first))
		}
	}
	// 平分时按 ID 升序
	if !equalIDs(first, "w", "x", "y", "z") {
		t.Errorf("平分排序 = %v, want [w x y z]", itemIDs(first))
	}
}
