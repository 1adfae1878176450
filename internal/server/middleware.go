package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	"taskhub/internal/domain/errors"
	"taskhub/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an id, reusing the caller's when sent.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
			ctx.Request.Header.Set(requestIDHeader, requestID)
		}
		ctx.Writer.Header().Set(requestIDHeader, requestID)
		ctx.Set("request_id", requestID)
		ctx.Next()
	}
}

func AccessLog(log *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		log.Info("HTTP request",
			zap.String("request_id", ctx.GetString("request_id")),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", ctx.ClientIP()),
		)
	}
}

// Recovery renders a generic 500 envelope for panics that escape a route.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(ctx *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.String("request_id", ctx.GetString("request_id")),
			zap.Any("panic", recovered),
		)
		env, code := response.InternalError("")
		ctx.AbortWithStatusJSON(code, env)
	})
}

// gzipBody reads the inflated stream and closes both it and the original body.
type gzipBody struct {
	*gzip.Reader
	body io.ReadCloser
}

func (b gzipBody) Close() error {
	zerr := b.Reader.Close()
	if err := b.body.Close(); err != nil {
		return err
	}
	return zerr
}

// GzipRequestDecompress inflates request bodies sent with Content-Encoding: gzip.
func GzipRequestDecompress() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !strings.Contains(strings.ToLower(ctx.GetHeader("Content-Encoding")), "gzip") {
			ctx.Next()
			return
		}
		zr, err := gzip.NewReader(ctx.Request.Body)
		if err != nil {
			env, code := response.BadRequest(errors.ErrInvalidGzipRequest.Error())
			ctx.AbortWithStatusJSON(code, env)
			return
		}
		ctx.Request.Body = gzipBody{Reader: zr, body: ctx.Request.Body}
		ctx.Request.Header.Del("Content-Encoding")
		ctx.Request.Header.Del("Content-Length")
		ctx.Request.ContentLength = -1
		ctx.Next()
	}
}

const minCompressSize = 1024

var compressibleTypes = []string{
	"application/json",
	"application/xml",
	"application/javascript",
	"text/html",
	"text/css",
	"text/plain",
	"text/xml",
	"text/javascript",
}

// CompressResponses gzips responses of compressible types once they reach
// minCompressSize, for clients that accept gzip.
func CompressResponses(next http.Handler) (http.Handler, error) {
	wrap, err := gzhttp.NewWrapper(
		gzhttp.MinSize(minCompressSize),
		gzhttp.ContentTypes(compressibleTypes),
	)
	if err != nil {
		return nil, err
	}
	return wrap(next), nil
}
