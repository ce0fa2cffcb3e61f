package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "blog-service-session||"
	tokensSetKey     = "blog-service-sessions"
)

var ErrMalformedSession = errors.New("malformed session value")

type session struct {
	userID    int
	createdAt time.Time
}

func (s session) String() string {
	return fmt.Sprintf("%d|%d", s.userID, s.createdAt.Unix())
}

func (s session) expired(ttl time.Duration) bool {
	return time.Since(s.createdAt) > ttl
}

func parseSession(val string) (session, error) {
	userIDStr, createdAtStr, found := strings.Cut(val, "|")
	if !found {
		return session{}, ErrMalformedSession
	}

	userID, err := strconv.Atoi(userIDStr)
	if err != nil || userID <= 0 {
		return session{}, fmt.Errorf("%w: user id [%s]", ErrMalformedSession, userIDStr)
	}

	createdAtUnix, err := strconv.ParseInt(createdAtStr, 10, 64)
	if err != nil {
		return session{}, fmt.Errorf("%w: created at [%s]", ErrMalformedSession, createdAtStr)
	}

	return session{
		userID:    userID,
		createdAt: time.Unix(createdAtUnix, 0),
	}, nil
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}
