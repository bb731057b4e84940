package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"lms/backend/models"
	"lms/backend/utils"
)

const (
	listKeyPrefix   = "courses:list:"
	detailKeyPrefix = "course:detail:"
)

// CourseCache is a read-through cache for the public catalogue. A nil cache or a
// cache without a client never hits and never fails.
type CourseCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *utils.Logger
}

func NewCourseCache(rdb *redis.Client, ttl time.Duration, log *utils.Logger) *CourseCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CourseCache{rdb: rdb, ttl: ttl, log: log}
}

func (c *CourseCache) enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *CourseCache) getList(ctx context.Context, search string) ([]models.Course, bool) {
	var courses []models.Course
	return courses, c.get(ctx, listKeyPrefix+search, &courses)
}

func (c *CourseCache) putList(ctx context.Context, search string, courses []models.Course) {
	c.put(ctx, listKeyPrefix+search, courses)
}

func (c *CourseCache) getDetail(ctx context.Context, id string) (*models.Course, bool) {
	var course models.Course
	if !c.get(ctx, detailKeyPrefix+id, &course) {
		return nil, false
	}
	return &course, true
}

func (c *CourseCache) putDetail(ctx context.Context, course *models.Course) {
	c.put(ctx, detailKeyPrefix+course.ID, course)
}

func (c *CourseCache) get(ctx context.Context, key string, dst any) bool {
	if !c.enabled() {
		return false
	}
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("course cache read failed", "key", key, "error", err)
		}
		return false
	}
	return json.Unmarshal(val, dst) == nil
}

func (c *CourseCache) put(ctx context.Context, key string, v any) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("course cache write failed", "key", key, "error", err)
	}
}

// Invalidate drops the detail entry of courseID and every cached listing.
func (c *CourseCache) Invalidate(ctx context.Context, courseID string) {
	if !c.enabled() {
		return
	}
	keys := []string{detailKeyPrefix + courseID}
	iter := c.rdb.Scan(ctx, 0, listKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("course cache scan failed", "error", err)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("course cache invalidation failed", "course_id", courseID, "error", err)
	}
}
