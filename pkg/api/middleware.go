package api

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

const requestIDHeader = "X-Request-Id"

// withMiddleware wraps next with request correlation IDs, access logging,
// panic recovery, and a concurrency limit — fasthttp has no net/http-style
// middleware chain, so this composes the same way the teacher's
// withMiddleware does: one function wrapping another.
func withMiddleware(next fasthttp.RequestHandler, sem chan struct{}) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
		default:
			writeError(ctx, fasthttp.StatusServiceUnavailable, "store_unavailable", "server at capacity")
			return
		}

		requestID := uuid.NewString()
		ctx.Request.Header.Set(requestIDHeader, requestID)
		ctx.Response.Header.Set(requestIDHeader, requestID)

		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("request %s panic: %v", requestID, r)
				writeError(ctx, fasthttp.StatusInternalServerError, "internal", "internal error")
			}
			log.Printf("request %s %s %s %d %s", requestID, ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start))
		}()

		next(ctx)
	}
}

func requestIDFromCtx(ctx *fasthttp.RequestCtx) string {
	return string(ctx.Request.Header.Peek(requestIDHeader))
}
