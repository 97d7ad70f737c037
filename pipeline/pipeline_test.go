package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/melokit/core"
)

type appendNode struct {
	name string
	kind Kind
	err  error
}

func (n *appendNode) Name() string { return n.name }
func (n *appendNode) Kind() Kind   { return n.kind }

func (n *appendNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.err != nil {
		return nil, n.err
	}
	return append(items, core.NewItem(n.name)), nil
}

func TestPipelineRun(t *testing.T) {
	p := &Pipeline{Nodes: []Node{
		&appendNode{name: "first", kind: KindRecall},
		nil, // nil 节点跳过
		&appendNode{name: "second", kind: KindReRank},
	}}

	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out) != 2 || out[0].ID != "first" || out[1].ID != "second" {
		t.Errorf("节点执行顺序错误: %v", out)
	}
}

func TestPipelineRunError(t *testing.T) {
	boom := errors.New("boom")
	p := &Pipeline{Nodes: []Node{
		&appendNode{name: "ok", kind: KindRecall},
		&appendNode{name: "bad", kind: KindFilter, err: boom},
	}}
	if _, err := p.Run(context.Background(), &core.RecommendContext{}, nil); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want boom", err)
	}
}

func TestNodeFactory(t *testing.T) {
	f := NewNodeFactory()
	f.Register("test.append", func(cfg map[string]any) (Node, error) {
		name, _ := cfg["name"].(string)
		return &appendNode{name: name, kind: KindRecall}, nil
	})

	node, err := f.Build("test.append", map[string]any{"name": "n1"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if node.Name() != "n1" {
		t.Errorf("Name() = %q", node.Name())
	}

	if _, err := f.Build("unknown.type", nil); err == nil {
		t.Error("未注册类型应报错")
	}
}

func TestLoadConfigAndBuild(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	content := `pipeline:
  name: mood_curation
  nodes:
    - type: test.append
      config:
        name: recall_stage
    - type: test.append
      config:
        name: rerank_stage
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Pipeline.Name != "mood_curation" || len(cfg.Pipeline.Nodes) != 2 {
		t.Fatalf("配置解析错误: %+v", cfg)
	}

	f := NewNodeFactory()
	f.Register("test.append", func(c map[string]any) (Node, error) {
		name, _ := c["name"].(string)
		return &appendNode{name: name, kind: KindRecall}, nil
	})
	p, err := cfg.BuildPipeline(f)
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}
	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].ID != "recall_stage" {
		t.Errorf("构建的 Pipeline 执行结果 = %v", out)
	}
}
