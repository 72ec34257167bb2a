package dashboard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vrtravel/reconcli/internal/events"
	"github.com/vrtravel/reconcli/internal/store"
)

// registerRoutes sets up all dashboard routes on the gin router.
func registerRoutes(router *gin.Engine, s *store.Store, bus *events.Bus) {
	hub := newSSEHub(bus)

	router.GET("/api/scenes", handleScenes(s))
	router.GET("/api/scenes/:id", handleScene(s))
	router.GET("/api/workflow", handleWorkflow(s))
	router.GET("/api/events", handleSSE(hub))
}

func handleScenes(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		scenes, err := s.Scenes()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"scenes": scenes})
	}
}

func handleScene(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		scene, err := s.Scene(c.Param("id"))
		if err != nil {
			if errors.Is(err, store.ErrSceneNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "scene not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, scene)
	}
}

func handleWorkflow(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, s.Workflow())
	}
}
