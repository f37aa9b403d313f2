package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shweta-Mathanker/womanSafetyDTI/pkg/appenv"
)

// CORS configures cross-origin headers. Outside production any origin is
// allowed; in production only origins listed in the comma-separated
// ALLOWED_ORIGINS env var are reflected.
func CORS() gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = struct{}{}
		}
	}
	methods := "GET, POST, DELETE, OPTIONS"
	headers := "Origin, Content-Type"
	isProd := appenv.IsProduction() && gin.Mode() != gin.TestMode

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		c.Header("Vary", "Origin")

		switch {
		case !isProd:
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", headers)
		case origin != "":
			if _, ok := allowed[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Methods", methods)
				c.Header("Access-Control-Allow-Headers", headers)
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
