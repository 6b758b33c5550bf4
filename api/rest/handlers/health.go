package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nametracker/nametracker/internal/repository"
)

// HealthCheck provides a simple health check endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Status reports how many domains sit in the archive, a cheap liveness
// signal for the archival job.
func Status(repos *repository.Repositories) gin.HandlerFunc {
	return func(c *gin.Context) {
		archived, err := repos.ArchivedDomainRepository.Count(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "status unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"archivedDomains": archived,
		})
	}
}
