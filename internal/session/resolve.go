package session

import (
	"fmt"
	"net/url"
)

// resolveAPIRoot resolves an API root reference from a discovery document
// against the server URL. Absolute references are returned unchanged.
func resolveAPIRoot(serverURL, apiRoot string) (string, error) {
	ref, err := url.Parse(apiRoot)
	if err != nil {
		return "", fmt.Errorf("invalid API root %q: %w", apiRoot, err)
	}
	if ref.IsAbs() {
		return apiRoot, nil
	}

	base, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", serverURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}
