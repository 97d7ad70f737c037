package feast

import (
	"context"
	"testing"
	"time"
)

// TestGrpcClient_ListenerProfile 测试 gRPC 画像客户端的基本功能
// 注意：这是一个示例测试，实际使用时需要连接真实的 Feast 服务器
func TestGrpcClient_ListenerProfile(t *testing.T) {
	t.Skip("需要连接真实的 Feast 服务器才能运行")

	ctx := context.Background()

	client, err := NewGrpcClient("localhost", 6565,
		WithProject("melokit"),
		WithTimeout(2*time.Second),
	)
	if err != nil {
		t.Fatalf("创建客户端失败: %v", err)
	}
	defer client.Close()

	profile, err := client.ListenerProfile(ctx, "user_000001")
	if err != nil {
		t.Fatalf("拉取画像失败: %v", err)
	}
	t.Logf("画像: %+v", profile)
}

func TestClientOptions(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Project != "melokit" || cfg.FeatureView != "listener_profile" {
		t.Errorf("默认配置 = %+v", cfg)
	}
	if cfg.EntityKey != "user_id" || cfg.Timeout != time.Second {
		t.Errorf("默认配置 = %+v", cfg)
	}

	for _, opt := range []ClientOption{
		WithProject("demo"),
		WithFeatureView("listener_stats"),
		WithTimeout(5 * time.Second),
		WithStaticToken("secret"),
	} {
		opt(cfg)
	}
	if cfg.Project != "demo" || cfg.FeatureView != "listener_stats" {
		t.Errorf("选项未生效: %+v", cfg)
	}
	if cfg.Timeout != 5*time.Second || cfg.StaticToken != "secret" {
		t.Errorf("选项未生效: %+v", cfg)
	}
}
