package domain

import "errors"

// ErrTokenNotConfigured is returned when no GitHub token is available for a request.
var ErrTokenNotConfigured = errors.New("GITHUB_TOKEN not configured")
