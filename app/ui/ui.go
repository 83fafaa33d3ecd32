// Package ui provides embedded dashboard markup and default dist and ux asset directories
package ui

import (
	"embed"
	"io/fs"
)

//go:embed ui.html
var markup []byte

//go:embed dist ux
var assets embed.FS

// Markup returns dashboard markup document
func Markup() []byte {
	res := make([]byte, len(markup))
	copy(res, markup)
	return res
}

// Dist returns default dist assets
func Dist() fs.FS { return sub("dist") }

// UX returns default ux assets
func UX() fs.FS { return sub("ux") }

func sub(dir string) fs.FS {
	res, err := fs.Sub(assets, dir)
	if err != nil {
		panic(err) // embedded directory always present
	}
	return res
}
