package service

import (
	"context"
	"errors"
	"fmt"
	"thywilluche/internal/domain/user/model"
	"thywilluche/pkg/cache"
	"thywilluche/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// 缓存键常量
const (
	UserCacheKeyPrefix = "user:"
	UserCacheTTL       = time.Minute * 30
)

// CachedUserService 带缓存的用户服务，只缓存按 ID 读取的用户资料
type CachedUserService struct {
	UserService
	cache cache.CacheService
}

// NewCachedUserService 创建带缓存的用户服务
func NewCachedUserService(next UserService, c cache.CacheService) UserService {
	return &CachedUserService{UserService: next, cache: c}
}

// getUserCacheKey 获取用户缓存键
func (s *CachedUserService) getUserCacheKey(id string) string {
	return fmt.Sprintf("%s%s", UserCacheKeyPrefix, id)
}

// invalidateUserCache 清除用户缓存，失败只记录日志
func (s *CachedUserService) invalidateUserCache(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, s.getUserCacheKey(userID)); err != nil {
		logger.Log.Warn("failed to invalidate user cache", zap.String("user_id", userID), zap.Error(err))
	}
}

// GetUser 先查缓存
func (s *CachedUserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	key := s.getUserCacheKey(id)

	var user model.User
	err := s.cache.Get(ctx, key, &user)
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Log.Warn("user cache get failed", zap.String("key", key), zap.Error(err))
	}

	u, err := s.UserService.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, u, UserCacheTTL); err != nil {
		logger.Log.Warn("user cache set failed", zap.String("key", key), zap.Error(err))
	}
	return u, nil
}

func (s *CachedUserService) GetMe(ctx context.Context, id string) (*model.User, error) {
	return s.GetUser(ctx, id)
}

func (s *CachedUserService) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*model.User, error) {
	user, err := s.UserService.UpdateProfile(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidateUserCache(ctx, id)
	return user, nil
}

func (s *CachedUserService) ChangeRole(ctx context.Context, adminID, id, role string) (*model.User, error) {
	user, err := s.UserService.ChangeRole(ctx, adminID, id, role)
	if err != nil {
		return nil, err
	}
	s.invalidateUserCache(ctx, id)
	return user, nil
}

func (s *CachedUserService) SetRoleByEmail(ctx context.Context, email, role string) (*model.User, error) {
	user, err := s.UserService.SetRoleByEmail(ctx, email, role)
	if err != nil {
		return nil, err
	}
	s.invalidateUserCache(ctx, user.ID)
	return user, nil
}
