// Package web serves the embedded single-page dashboard.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static
var staticFS embed.FS

// RegisterRoutes mounts the dashboard at / and its assets under /static.
func RegisterRoutes(router *gin.Engine) {
	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}

	index, err := fs.ReadFile(assets, "index.html")
	if err != nil {
		panic(err)
	}

	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	})
	router.StaticFS("/static", http.FS(assets))
}
