package handlers

import (
	"context"
	"net/http"
	"time"

	"real-estate-crm/internal/database"

	"github.com/gin-gonic/gin"
)

// Health reports liveness and whether the database answers a ping
func Health(db *database.GormDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, dbStatus, code := "ok", "ok", http.StatusOK
		if err := db.Ping(ctx); err != nil {
			status, dbStatus, code = "degraded", err.Error(), http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":   status,
			"time":     time.Now().UTC(),
			"database": dbStatus,
		})
	}
}
