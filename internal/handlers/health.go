package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	appErrors "github.com/charlesng35/signupd/pkg/errors"
	"github.com/charlesng35/signupd/pkg/response"
)

// Health reports whether the store behind the service is reachable.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(requestContext(c))
			}
			if err != nil {
				response.Error(c, appErrors.ErrServiceUnavailable.WithInternal(err))
				return
			}
		}

		response.Success(c, http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "connected",
		})
	}
}
