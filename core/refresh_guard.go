package core

import "golang.org/x/sync/singleflight"

// refreshGuard shares one in-flight refresh between concurrent executions
// holding the same refresh token.
type refreshGuard struct {
	group singleflight.Group
}

func newRefreshGuard() *refreshGuard {
	return &refreshGuard{}
}

func (g *refreshGuard) do(refreshToken string, fn func() (refreshOutcome, error)) (refreshOutcome, error) {
	value, err, _ := g.group.Do(refreshToken, func() (any, error) {
		return fn()
	})
	outcome, _ := value.(refreshOutcome)
	return outcome, err
}
