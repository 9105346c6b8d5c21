package ranking

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisLeaderboard keeps one sorted set of points per course, plus a hash of
// display names.
type RedisLeaderboard struct {
	client *redis.Client
}

// NewRedisLeaderboard creates a leaderboard on the given client.
func NewRedisLeaderboard(client *redis.Client) *RedisLeaderboard {
	return &RedisLeaderboard{client: client}
}

func scoreKey(courseID string) string { return fmt.Sprintf("course:%s:lb", courseID) }
func namesKey(courseID string) string { return fmt.Sprintf("course:%s:names", courseID) }

// Report adds the award's points to the user's score.
func (l *RedisLeaderboard) Report(ctx context.Context, a Award) error {
	pipe := l.client.TxPipeline()
	pipe.ZIncrBy(ctx, scoreKey(a.CourseID), float64(a.Points), a.UserID)
	if a.UserName != "" {
		pipe.HSet(ctx, namesKey(a.CourseID), a.UserID, a.UserName)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis leaderboard: %w", err)
	}
	return nil
}

// Top returns the highest scores in the course, best first.
func (l *RedisLeaderboard) Top(ctx context.Context, courseID string, limit int) ([]Standing, error) {
	if limit <= 0 {
		limit = 10
	}
	results, err := l.client.ZRevRangeWithScores(ctx, scoreKey(courseID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis leaderboard: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	ids := make([]string, len(results))
	for i, z := range results {
		ids[i], _ = z.Member.(string)
	}
	names, err := l.client.HMGet(ctx, namesKey(courseID), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis leaderboard names: %w", err)
	}

	out := make([]Standing, len(results))
	for i, z := range results {
		out[i] = Standing{UserID: ids[i], Points: int(z.Score), Rank: i + 1}
		if name, ok := names[i].(string); ok {
			out[i].UserName = name
		}
	}
	return out, nil
}

// Rank returns the user's 1-based position, or 0 if the user has no score.
func (l *RedisLeaderboard) Rank(ctx context.Context, courseID, userID string) (int64, error) {
	rank, err := l.client.ZRevRank(ctx, scoreKey(courseID), userID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis leaderboard: %w", err)
	}
	return rank + 1, nil
}
