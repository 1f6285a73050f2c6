// Package web serves the single-page Search / History interface.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed index.html static
var assets embed.FS

// Handler serves index.html at / and the embedded assets under /static/.
func Handler() http.Handler {
	static, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	files := http.StripPrefix("/static/", http.FileServerFS(static))

	mux := http.NewServeMux()
	mux.Handle("GET /static/", files)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFileFS(w, r, assets, "index.html")
	})
	return mux
}
