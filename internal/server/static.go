package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// frontendDirs are the bundle subdirectories served as-is when present.
var frontendDirs = []string{"assets", "sounds"}

type frontend struct {
	index   string
	favicon string
	dirs    map[string]string
}

// resolveFrontend inspects a built board bundle. A missing index.html is
// reported but the asset directories are still returned.
func resolveFrontend(root string) (frontend, error) {
	info, err := os.Stat(root)
	if err != nil {
		return frontend{}, fmt.Errorf("stat static dir: %w", err)
	}
	if !info.IsDir() {
		return frontend{}, fmt.Errorf("static path %s is not a directory", root)
	}

	fe := frontend{dirs: map[string]string{}}
	for _, name := range frontendDirs {
		full := filepath.Join(root, name)
		if st, err := os.Stat(full); err == nil && st.IsDir() {
			fe.dirs["/"+name] = full
		}
	}
	if fav := filepath.Join(root, "favicon.ico"); fileExists(fav) {
		fe.favicon = fav
	}

	index := filepath.Join(root, "index.html")
	if !fileExists(index) {
		return fe, errors.New("index.html not found")
	}
	fe.index = index
	return fe, nil
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// mountStatic serves the board bundle. Client routes such as /login fall
// back to index.html; unknown backend paths stay JSON 404s.
func (s *Server) mountStatic() {
	if s.staticDir == "" {
		s.logger.Warn("static directory not configured; API only mode")
		return
	}

	fe, err := resolveFrontend(s.staticDir)
	if err != nil {
		s.logger.Warn("frontend bundle incomplete",
			slog.String("path", s.staticDir),
			slog.String("error", err.Error()),
		)
	}
	for prefix, dir := range fe.dirs {
		s.engine.StaticFS(prefix, gin.Dir(dir, false))
	}
	if fe.favicon != "" {
		s.engine.StaticFile("/favicon.ico", fe.favicon)
	}
	if fe.index == "" {
		return
	}

	s.engine.GET("/", func(c *gin.Context) { c.File(fe.index) })
	s.engine.NoRoute(func(c *gin.Context) {
		if isBackendPath(c.Request.URL.Path) {
			c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
			return
		}
		c.File(fe.index)
	})
}

func isBackendPath(path string) bool {
	return strings.HasPrefix(path, "/api/") || path == "/metrics"
}
