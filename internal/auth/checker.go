package auth

import "context"

var _ Checker = (*LoginChecker)(nil)

type Checker interface {
	// Identify resolves the session token into the caller owning it.
	// Unknown and expired tokens yield logged == false and no error.
	Identify(ctx context.Context, token string) (caller Caller, logged bool, err error)
}
