package media

import (
	"context"
	"net/url"
)

// Resolver turns a stored profile image reference into a URL a client can
// fetch.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// Passthrough returns stored references unchanged.
type Passthrough struct{}

func (Passthrough) Resolve(_ context.Context, ref string) (string, error) {
	return ref, nil
}

// absolute reports whether ref already carries a scheme and host.
func absolute(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && u.Scheme != "" && u.Host != ""
}
