package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sayamjn/rely-gate-sub002/config"
)

// Client Redis 客户端封装
// 用途：Token 黑名单、餐券核销台账（单次使用）、接口限流
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 餐券核销台账 ──
//
// 餐券哈希按日历日绑定，台账键同样按日分片：
// 同一 (租户, 学生, 餐别, 动作, 日期) 只能核销一次，次日零点后键自然过期。

const redemptionPrefix = "meal:redeemed:"

// MarkRedeemed 以 SETNX 原子登记一次核销，返回 false 表示今日已核销过
func (c *Client) MarkRedeemed(ctx context.Context, tenantID, studentID, mealType, action string, day time.Time) (bool, error) {
	key := redemptionKey(tenantID, studentID, mealType, action, day)
	// TTL 到次日零点后一小时，留出时钟偏移余量
	endOfDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()).AddDate(0, 0, 1)
	ttl := endOfDay.Sub(day) + time.Hour

	ok, err := c.rdb.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// IsRedeemed 查询今日是否已核销
func (c *Client) IsRedeemed(ctx context.Context, tenantID, studentID, mealType, action string, day time.Time) (bool, error) {
	n, err := c.rdb.Exists(ctx, redemptionKey(tenantID, studentID, mealType, action, day)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func redemptionKey(tenantID, studentID, mealType, action string, day time.Time) string {
	return fmt.Sprintf("%s%s:%s:%s:%s:%s", redemptionPrefix, tenantID, studentID, mealType, action, day.Format("2006-01-02"))
}

// ── 接口限流 ──

// CheckRateLimit 固定窗口计数限流：窗口内超过 limit 次返回 false
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := c.rdb.Incr(ctx, "rate_limit:"+key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := c.rdb.Expire(ctx, "rate_limit:"+key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
