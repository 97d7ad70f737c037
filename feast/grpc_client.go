package feast

import (
	"context"
	"fmt"

	feastsdk "github.com/feast-dev/feast/sdk/go"
)

// GrpcClient 是基于官方 Feast Go SDK 的 gRPC 实现。
type GrpcClient struct {
	client *feastsdk.GrpcClient
	cfg    *ClientConfig
}

// NewGrpcClient 创建 Feast gRPC 客户端。
//
// 参数：
//   - host: Feature Server 主机地址，例如 "localhost"
//   - port: gRPC 端口，0 表示默认 6565
//   - opts: 客户端配置选项
func NewGrpcClient(host string, port int, opts ...ClientOption) (*GrpcClient, error) {
	if port == 0 {
		port = 6565
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var client *feastsdk.GrpcClient
	var err error
	if cfg.StaticToken != "" {
		security := feastsdk.SecurityConfig{
			EnableTLS:  false,
			Credential: feastsdk.NewStaticCredential(cfg.StaticToken),
		}
		client, err = feastsdk.NewSecureGrpcClient(host, port, security)
	} else {
		client, err = feastsdk.NewGrpcClient(host, port)
	}
	if err != nil {
		return nil, fmt.Errorf("feast: connect %s:%d: %w", host, port, err)
	}

	return &GrpcClient{client: client, cfg: cfg}, nil
}

// ListenerProfile 获取用户画像特征（实现 Client 接口）。
func (c *GrpcClient) ListenerProfile(ctx context.Context, userID string) (Profile, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	moodFeature := c.cfg.FeatureView + ":favorite_mood"
	playsFeature := c.cfg.FeatureView + ":total_plays"

	req := &feastsdk.OnlineFeaturesRequest{
		Features: []string{moodFeature, playsFeature},
		Entities: []feastsdk.Row{
			{c.cfg.EntityKey: feastsdk.StrVal(userID)},
		},
		Project: c.cfg.Project,
	}

	resp, err := c.client.GetOnlineFeatures(ctx, req)
	if err != nil {
		return Profile{}, fmt.Errorf("feast: get online features: %w", err)
	}

	rows := resp.Rows()
	if len(rows) == 0 {
		return Profile{}, nil
	}

	var p Profile
	row := rows[0]
	if v, ok := row[moodFeature]; ok && v != nil {
		p.FavoriteMood = v.GetStringVal()
	}
	if v, ok := row[playsFeature]; ok && v != nil {
		p.TotalPlays = v.GetInt64Val()
	}
	return p, nil
}

// Close 关闭客户端连接（实现 Client 接口）。
// 官方 SDK 未暴露显式的 Close，连接由 gRPC 库管理。
func (c *GrpcClient) Close() error {
	c.client = nil
	return nil
}

var _ Client = (*GrpcClient)(nil)
