// Package module defines the minimal contract for a modkit module plus a bootstrap registry
package module

import phttp "eogfeat/internal/platform/net/http"

// Module is what the api composer mounts
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
