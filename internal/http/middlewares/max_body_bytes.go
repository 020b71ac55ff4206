package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps every request body. The router sets the limit just above
// the upload file cap so multipart overhead fits; anything larger fails the
// read with http.MaxBytesError, which the analyses handler maps to the
// oversize-file response.
func MaxBodyBytes(limit int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, limit)

		ctx.Next()
	}
}
