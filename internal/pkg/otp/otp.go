package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	CodeTTL        = 10 * time.Minute
	ResendInterval = time.Minute
	// MaxAttempts 同一个 key 在有效期内最多猜错的次数，达到后验证码作废
	MaxAttempts = 5
)

var (
	ErrTooFrequent = errors.New("please wait before requesting another code")
	ErrInvalidCode = errors.New("invalid or expired code")
)

type OTPService interface {
	// Issue 生成验证码，同一 key 一分钟内只能发一次
	Issue(ctx context.Context, purpose, key string) (string, error)
	// Verify 校验成功后立即删除，防止重放；猜错达到 MaxAttempts 次后作废
	Verify(ctx context.Context, purpose, key, code string) error
}

// store 验证码用到的 redis 命令
type store interface {
	TTL(ctx context.Context, key string) (time.Duration, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get key 不存在时返回 redis.Nil
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) (int64, error)
	// Incr 自增，第一次创建时设置过期时间
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type redisStore struct {
	rdb *redis.Client
}

func (r redisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	return r.rdb.TTL(ctx, key).Result()
}

func (r redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, value, ttl).Err()
}

func (r redisStore) Get(ctx context.Context, key string) (string, error) {
	return r.rdb.Get(ctx, key).Result()
}

func (r redisStore) Del(ctx context.Context, keys ...string) (int64, error) {
	return r.rdb.Del(ctx, keys...).Result()
}

func (r redisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := r.rdb.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, err
		}
	}
	return n, nil
}

type otpService struct {
	store    store
	fixed    string // 非空时固定验证码，仅测试环境配置
	generate func() (string, error)
}

func NewOTPService(rdb *redis.Client, fixedCode string) OTPService {
	return newService(redisStore{rdb: rdb}, fixedCode)
}

func newService(st store, fixedCode string) *otpService {
	return &otpService{store: st, fixed: fixedCode, generate: randomCode}
}

func redisKey(purpose, key string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, key)
}

func attemptsKey(purpose, key string) string {
	return redisKey(purpose, key) + ":attempts"
}

func (s *otpService) Issue(ctx context.Context, purpose, key string) (string, error) {
	// 1. 频率限制：剩余 TTL > 有效期 - 重发间隔，说明刚发不久
	k := redisKey(purpose, key)
	ttl, err := s.store.TTL(ctx, k)
	if err == nil && ttl > CodeTTL-ResendInterval {
		return "", ErrTooFrequent
	}

	// 2. 生成验证码
	code := s.fixed
	if code == "" {
		if code, err = s.generate(); err != nil {
			return "", err
		}
	}

	// 3. 存入 Redis。错误计数不随重发清零，按自己的 TTL 过期
	if err := s.store.Set(ctx, k, code, CodeTTL); err != nil {
		return "", err
	}
	return code, nil
}

func (s *otpService) Verify(ctx context.Context, purpose, key, code string) error {
	k, ak := redisKey(purpose, key), attemptsKey(purpose, key)

	attempts, err := s.attempts(ctx, ak)
	if err != nil {
		return err
	}
	if attempts >= MaxAttempts {
		return ErrInvalidCode
	}

	val, err := s.store.Get(ctx, k)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrInvalidCode
		}
		return err
	}
	if val != code {
		n, err := s.store.Incr(ctx, ak, CodeTTL)
		if err != nil {
			return err
		}
		if n >= MaxAttempts {
			if _, err := s.store.Del(ctx, k); err != nil {
				return err
			}
		}
		return ErrInvalidCode
	}

	// 并发校验时只有删除成功的一方通过
	n, err := s.store.Del(ctx, k)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidCode
	}
	_, _ = s.store.Del(ctx, ak)
	return nil
}

func (s *otpService) attempts(ctx context.Context, ak string) (int, error) {
	v, err := s.store.Get(ctx, ak)
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// randomCode 6 位数字
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
