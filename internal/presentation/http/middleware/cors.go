// Package middleware provides HTTP middleware for the presentation layer.
package middleware

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// ConnectionHeader carries the storage-event connection id of the page
// making a request, so its own change is not echoed back to it.
const ConnectionHeader = "X-Folio-Connection"

// ParseOrigins splits a comma-separated origin list.
func ParseOrigins(list string) []string {
	var origins []string
	for _, o := range strings.Split(list, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, strings.TrimRight(o, "/"))
		}
	}
	return origins
}

// CORSMiddleware allows the configured origins to drive the widget endpoints
// with credentials, including the htmx request headers.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{
			"GET", "POST", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"X-Requested-With", ConnectionHeader,
			"hx-current-url", "hx-request", "hx-target", "hx-trigger", "hx-boosted",
			"Cache-Control",
			"hx-trigger-name",
			"hx-active-element",
			"hx-active-element-name",
			"hx-active-element-value",
		},
		AllowCredentials: true,
		ExposeHeaders: []string{
			"Content-Type", "Cache-Control", RequestIDHeader,
		},
	}
	if len(config.AllowOrigins) == 0 {
		config.AllowOriginFunc = func(string) bool { return false }
	}

	return cors.New(config)
}
