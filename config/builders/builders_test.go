package builders

import (
	"context"
	"testing"

	"github.com/rushteam/melokit/config"
	"github.com/rushteam/melokit/core"
	"github.com/rushteam/melokit/filter"
	"github.com/rushteam/melokit/rerank"
)

func TestInitRegistration(t *testing.T) {
	registered := map[string]bool{}
	for _, typ := range config.SupportedTypes() {
		registered[typ] = true
	}
	for _, typ := range []string{"filter", "rerank.topn", "rerank.blend"} {
		if !registered[typ] {
			t.Errorf("类型 %s 未注册", typ)
		}
	}
}

func TestBuildFilterNode(t *testing.T) {
	node, err := BuildFilterNode(map[string]interface{}{
		"filters": []interface{}{
			map[string]interface{}{
				"type":    "blacklist",
				"artists": []interface{}{"nickelback"},
			},
			map[string]interface{}{
				"type": "rule",
				"expr": "item.score > 0.1",
			},
		},
	})
	if err != nil {
		t.Fatalf("BuildFilterNode() error = %v", err)
	}
	fn, ok := node.(*filter.Node)
	if !ok || len(fn.Filters) != 2 {
		t.Fatalf("node = %#v", node)
	}

	items := []*core.Item{
		{ID: "nickelback", Score: 0.9},
		{ID: "bonobo", Score: 0.5},
		{ID: "tycho", Score: 0.05},
	}
	out, err := fn.Process(context.Background(), &core.RecommendContext{}, items)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].ID != "bonobo" {
		t.Errorf("过滤结果 = %v", out)
	}
}

func TestBuildFilterNodeErrors(t *testing.T) {
	if _, err := BuildFilterNode(map[string]interface{}{}); err == nil {
		t.Error("缺少 filters 应报错")
	}
	_, err := BuildFilterNode(map[string]interface{}{
		"filters": []interface{}{
			map[string]interface{}{"type": "unknown"},
		},
	})
	if err == nil {
		t.Error("未知 filter 类型应报错")
	}
	_, err = BuildFilterNode(map[string]interface{}{
		"filters": []interface{}{
			map[string]interface{}{"type": "rule"},
		},
	})
	if err == nil {
		t.Error("rule filter 缺少 expr 应报错")
	}
}

func TestBuildTopNNode(t *testing.T) {
	node, err := BuildTopNNode(map[string]interface{}{"n": 3})
	if err != nil {
		t.Fatal(err)
	}
	if topn, ok := node.(*rerank.TopN); !ok || topn.N != 3 {
		t.Errorf("node = %#v", node)
	}

	node, _ = BuildTopNNode(map[string]interface{}{})
	if topn := node.(*rerank.TopN); topn.N != 10 {
		t.Errorf("默认 n = %d, want 10", topn.N)
	}
}

func TestBuildBlendNode(t *testing.T) {
	node, err := BuildBlendNode(map[string]interface{}{
		"similarity_weight": 0.6,
		"popularity_weight": 0.4,
	})
	if err != nil {
		t.Fatal(err)
	}
	blend, ok := node.(*rerank.Blend)
	if !ok || blend.SimilarityWeight != 0.6 || blend.PopularityWeight != 0.4 {
		t.Errorf("node = %#v", node)
	}
}
