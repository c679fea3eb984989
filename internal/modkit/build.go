package modkit

import (
	"net/http"
	"strings"

	"eogfeat/internal/modkit/httpkit"
)

// Built is the resolved option set a module keeps
type Built struct {
	Name     string
	Prefix   string
	Mw       []func(http.Handler) http.Handler
	Ports    any
	Register func(httpkit.Router)
}

// Build applies options; the prefix is normalized to one leading slash and no trailing slash
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	if c.register == nil {
		c.register = func(httpkit.Router) {}
	}
	return Built{
		Name:     c.name,
		Prefix:   normalizePrefix(c.prefix),
		Mw:       append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:    c.ports,
		Register: c.register,
	}
}

// Mount registers the module's routes under its prefix with its middleware
func (b Built) Mount(r httpkit.Router) {
	if b.Prefix == "" {
		r.Group(func(g httpkit.Router) {
			if len(b.Mw) > 0 {
				g.Use(b.Mw...)
			}
			b.Register(g)
		})
		return
	}
	httpkit.MountUnder(r, b.Prefix, b.Mw, b.Register)
}

func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
