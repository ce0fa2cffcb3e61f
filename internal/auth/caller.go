package auth

import "context"

// Caller is the identity of whoever sent the request. The zero value is an anonymous caller.
type Caller struct {
	UserID int
}

func (c Caller) IsAnonymous() bool {
	return c.UserID <= 0
}

func (c Caller) Owns(userID int) bool {
	return !c.IsAnonymous() && c.UserID == userID
}

type callerCtxKey struct{}

func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerCtxKey{}, caller)
}

// CallerFromContext returns the caller stored by the auth middleware,
// or an anonymous caller if there is none.
func CallerFromContext(ctx context.Context) Caller {
	caller, ok := ctx.Value(callerCtxKey{}).(Caller)
	if !ok {
		return Caller{}
	}
	return caller
}
