package middleware

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"lms/backend/apperr"
	"lms/backend/utils"
)

// RateLimiter counts requests per client in fixed redis windows. Without a redis
// client every request passes.
type RateLimiter struct {
	redisClient *redis.Client
	log         *utils.Logger
}

func NewRateLimiter(client *redis.Client, log *utils.Logger) *RateLimiter {
	return &RateLimiter{redisClient: client, log: log}
}

// Limit allows limit requests per window for each caller. Authenticated callers
// are counted by user id, anonymous ones by IP.
func (rl *RateLimiter) Limit(keySuffix string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl == nil || rl.redisClient == nil || limit <= 0 {
			return c.Next()
		}

		caller := c.IP()
		if id := Identity(c); !id.Anonymous() {
			caller = "user:" + id.UserID
		}
		key := fmt.Sprintf("rate_limit:%s:%s", keySuffix, caller)
		ctx := c.UserContext()

		count, err := rl.redisClient.Incr(ctx, key).Result()
		if err != nil {
			rl.log.Warn("rate limiter unavailable", "key", key, "error", err)
			return c.Next()
		}

		// первый запрос в окне задает время жизни ключа; без него счетчик не сбросится
		if count == 1 {
			if err := rl.redisClient.Expire(ctx, key, window).Err(); err != nil {
				rl.redisClient.Del(ctx, key)
				rl.log.Warn("rate limit window not set", "key", key, "error", err)
				return c.Next()
			}
		}

		if count > int64(limit) {
			ttl, _ := rl.redisClient.TTL(ctx, key).Result()
			if ttl < 0 {
				// ключ остался без срока жизни, восстанавливаем окно
				rl.redisClient.Expire(ctx, key, window)
				ttl = window
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(ttl.Seconds()))))
			return apperr.RateLimited("Too many requests")
		}
		return c.Next()
	}
}
