package config

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-gonic/gin"
)

// InitLogger sends the standard logger and gin's access log to a rotating
// file in addition to stdout. An empty path leaves logging on stdout only.
func InitLogger(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	rotating := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	}
	out := io.MultiWriter(os.Stdout, rotating)
	log.SetOutput(out)
	gin.DefaultWriter = out
	gin.DefaultErrorWriter = out
	return nil
}
