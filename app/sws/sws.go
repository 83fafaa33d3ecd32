// Package sws implements request/response instrumentation middleware. It tags each request, reports tracked
// requests and responses to the stats processor and exposes stats, metrics, ui and static assets endpoints,
// some of them behind the authorization gate.
//
// Hooks are bound with Plugin.Middleware wrapping the whole host handler, endpoints added with Plugin.Register
// on the host router. Requests under the base uri path are never reported.
package sws

import (
	"io/fs"
	"os"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/sws/app/settings"
)

//go:generate moq -out metrics_mock.go -fmt goimports . MetricsSource

// MetricsSource returns current metrics snapshot in text exposition format
type MetricsSource interface {
	Metrics() ([]byte, error)
}

// Plugin binds lifecycle hooks and endpoints to a host server
type Plugin struct {
	Settings  settings.Settings
	Processor Processor
	Auth      Authenticator // no authorization if nil
	Metrics   MetricsSource
	UI        []byte // ui markup document
	DistFS    fs.FS  // dist assets, Settings.DistRoot used if nil
	UXFS      fs.FS  // ux assets, Settings.UXRoot used if nil
	L         log.L
}

func (p *Plugin) logger() log.L {
	if p.L == nil {
		return log.Default()
	}
	return p.L
}

func (p *Plugin) distAssets() Assets {
	return Assets{FS: rootFS(p.DistFS, p.Settings.DistRoot)}
}

func (p *Plugin) uxAssets() Assets {
	return Assets{FS: rootFS(p.UXFS, p.Settings.UXRoot), Index: "index.html"}
}

func rootFS(fsys fs.FS, root string) fs.FS {
	if fsys != nil {
		return fsys
	}
	if root == "" {
		return nil
	}
	return os.DirFS(root)
}
