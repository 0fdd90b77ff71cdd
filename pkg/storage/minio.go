// Package storage 提供了与对象存储服务（MinIO）交互的功能，用于对话导出。
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"tigersai/internal/config"
	"tigersai/pkg/log"
)

// Store 封装了 MinIO 客户端、目标存储桶和预签名链接有效期。
type Store struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

// New 创建 Store，但不访问网络。Region 需显式配置，避免预签名时查询桶位置。
func New(cfg config.MinIOConfig) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}
	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &Store{client: client, bucket: cfg.BucketName, expiry: expiry}, nil
}

// InitMinIO 初始化 MinIO 客户端并确保存储桶存在。Endpoint 为空时返回 nil。
func InitMinIO(cfg config.MinIOConfig) (*Store, error) {
	if cfg.Endpoint == "" {
		log.Info("MinIO 未配置，对话导出已关闭")
		return nil, nil
	}
	s, err := New(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("MinIO 客户端初始化成功")

	if err := s.EnsureBucket(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// EnsureBucket 检查存储桶 (Bucket) 是否存在，如果不存在则创建
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("检查 MinIO 存储桶失败: %w", err)
	}
	if exists {
		log.Infof("存储桶 '%s' 已存在", s.bucket)
		return nil
	}
	log.Infof("存储桶 '%s' 不存在，正在创建...", s.bucket)
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("创建 MinIO 存储桶失败: %w", err)
	}
	log.Infof("存储桶 '%s' 创建成功", s.bucket)
	return nil
}

// PutObject 上传一个对象。
func (s *Store) PutObject(ctx context.Context, objectName, contentType string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

// PresignedURL 为对象生成一个限时下载链接。
func (s *Store) PresignedURL(ctx context.Context, objectName string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, s.expiry, nil)
	if err != nil {
		log.Errorf("Error generating presigned URL: %s", err)
		return "", err
	}
	return u.String(), nil
}
