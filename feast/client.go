// Package feast 接入 Feast Feature Store，为冷启动兜底提供画像特征。
//
// 未知用户没有因子向量，推荐门面先尝试从特征库读取用户画像中的
// favorite_mood，命中则走对应 mood 策展，未命中才退到默认 mood。
//
// 接口与实现分离：领域层只依赖 Client，基础设施层用官方 SDK
// (github.com/feast-dev/feast/sdk/go) 提供 gRPC 实现。
package feast

import (
	"context"
	"time"
)

// Client 是用户画像特征的客户端接口。
type Client interface {
	// ListenerProfile 获取单个用户的画像特征。
	// 用户不存在或特征缺失时返回零值 Profile，不报错。
	ListenerProfile(ctx context.Context, userID string) (Profile, error)

	// Close 关闭客户端连接
	Close() error
}

// Profile 是推荐侧关心的用户画像特征。
type Profile struct {
	// FavoriteMood 用户偏好的 mood，可能为空
	FavoriteMood string

	// TotalPlays 历史总播放量
	TotalPlays int64
}

// ClientOption 客户端配置选项
type ClientOption func(*ClientConfig)

// ClientConfig 客户端配置
type ClientConfig struct {
	// Project 项目名称
	Project string

	// FeatureView 画像特征视图名称
	FeatureView string

	// EntityKey 实体字段名
	EntityKey string

	// Timeout 单次请求超时
	Timeout time.Duration

	// StaticToken 静态 Token 认证（可选）
	StaticToken string
}

func defaultConfig() *ClientConfig {
	return &ClientConfig{
		Project:     "melokit",
		FeatureView: "listener_profile",
		EntityKey:   "user_id",
		Timeout:     time.Second,
	}
}

// WithProject 配置选项：设置项目名称
func WithProject(project string) ClientOption {
	return func(c *ClientConfig) { c.Project = project }
}

// WithFeatureView 配置选项：设置画像特征视图名称
func WithFeatureView(view string) ClientOption {
	return func(c *ClientConfig) { c.FeatureView = view }
}

// WithTimeout 配置选项：设置请求超时
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) { c.Timeout = timeout }
}

// WithStaticToken 配置选项：静态 Token 认证
func WithStaticToken(token string) ClientOption {
	return func(c *ClientConfig) { c.StaticToken = token }
}
