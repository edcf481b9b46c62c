package gateway

import "context"

// FileStoreGateway 云文件存储网关（Dropbox）
type FileStoreGateway interface {
	// AccessToken 用长期refresh凭证换取短期bearer令牌
	AccessToken(ctx context.Context) (string, error)

	// FetchToLocal 流式下载远端对象到本地路径；出错时不得留下半截文件
	FetchToLocal(ctx context.Context, sourceRef, localPath string) error

	// CreatePublicLink 为对象创建公开直链
	CreatePublicLink(ctx context.Context, sourceRef string) (string, error)

	// RevokeLink 撤销对象的公开链接；无链接可撤销是调用方逻辑错误
	RevokeLink(ctx context.Context, sourceRef string) error

	// TemporaryLink 获取对象的临时直链
	TemporaryLink(ctx context.Context, sourceRef string) (string, error)
}
