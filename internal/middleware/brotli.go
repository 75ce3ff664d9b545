// middleware/brotli.go
package middleware

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

type BrotliConfig struct {
	Quality   int
	MinLength int
	Skipper   func(c *gin.Context) bool
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
}

// bufferedWriter holds the whole view response so the compression decision
// can be made on its final size. View models are small JSON documents.
type bufferedWriter struct {
	gin.ResponseWriter
	body   bytes.Buffer
	status int
}

func (bw *bufferedWriter) WriteHeader(code int) {
	bw.status = code
}

func (bw *bufferedWriter) WriteHeaderNow() {}

func (bw *bufferedWriter) Write(data []byte) (int, error) {
	return bw.body.Write(data)
}

func (bw *bufferedWriter) WriteString(s string) (int, error) {
	return bw.body.WriteString(s)
}

func (bw *bufferedWriter) Status() int {
	if bw.status == 0 {
		return http.StatusOK
	}
	return bw.status
}

func (bw *bufferedWriter) Size() int {
	return bw.body.Len()
}

func (bw *bufferedWriter) Written() bool {
	return bw.status != 0 || bw.body.Len() > 0
}

func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < 0 || cfg.Quality > 11 {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if shouldSkip(c) || (cfg.Skipper != nil && cfg.Skipper(c)) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")
		orig := c.Writer
		bw := &bufferedWriter{ResponseWriter: orig}
		c.Writer = bw
		c.Next()
		c.Writer = orig

		if err := writeBuffered(orig, bw, cfg); err != nil {
			_ = c.Error(err)
		}
	}
}

// writeBuffered sends the captured response, compressed when it is large
// enough and not already encoded.
func writeBuffered(w gin.ResponseWriter, bw *bufferedWriter, cfg BrotliConfig) error {
	body := bw.body.Bytes()
	status := bw.Status()

	if len(body) < cfg.MinLength || w.Header().Get("Content-Encoding") != "" || status < http.StatusOK ||
		status == http.StatusNoContent || status == http.StatusNotModified {
		w.WriteHeader(status)
		if len(body) == 0 {
			w.WriteHeaderNow()
			return nil
		}
		_, err := w.Write(body)
		return err
	}

	var out bytes.Buffer
	enc := brotli.NewWriterLevel(&out, cfg.Quality)
	if _, err := enc.Write(body); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}

	w.Header().Set("Content-Encoding", "br")
	w.Header().Set("Content-Length", strconv.Itoa(out.Len()))
	w.WriteHeader(status)
	_, err := w.Write(out.Bytes())
	return err
}

// shouldSkip returns true for protocols that are incompatible with
// buffered compression and must be passed through untouched.
func shouldSkip(c *gin.Context) bool {
	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		return true
	}
	// The WebSocket handshake fails if the response is buffered.
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return true
	}
	return false
}

func acceptsBrotli(r *http.Request) bool {
	ae := r.Header.Get("Accept-Encoding")
	for _, enc := range strings.Split(ae, ",") {
		if strings.TrimSpace(strings.ToLower(enc)) == "br" {
			return true
		}
	}
	return false
}
