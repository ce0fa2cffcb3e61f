package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/blogservice/internal/telemetry/tracing"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

func (lc *LoginChecker) Identify(ctx context.Context, token string) (Caller, bool, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "loginChecker.identify")
	defer span.End()

	if token == "" {
		return Caller{}, false, nil
	}

	val, err := lc.redisClient.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return Caller{}, false, nil
	}
	if err != nil {
		span.RecordError(err)
		return Caller{}, false, fmt.Errorf("get session: %w", err)
	}

	s, err := parseSession(val)
	if err != nil {
		span.RecordError(err)
		return Caller{}, false, err
	}

	if s.expired(lc.ttl) {
		return Caller{}, false, nil
	}

	span.SetAttributes(attribute.Int("user.id", s.userID))
	return Caller{UserID: s.userID}, true, nil
}
