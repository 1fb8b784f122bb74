// Package api serves the admin HTTP endpoints and the WebSocket entry point.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tricktable/internal/network"
	"tricktable/internal/services/cluster"
	"tricktable/internal/session"
)

type Deps struct {
	Directory *session.Directory
	Health    *cluster.HealthAggregator
	// WebSocket serves /ws when set.
	WebSocket http.HandlerFunc
	Log       *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(d.Log.Named("api")))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/health", health(d.Health))
	r.GET("/games", listGames(d.Directory))
	r.GET("/games/:id", showGame(d.Directory))
	r.GET("/lobbies", listLobbies(d.Directory))
	if d.WebSocket != nil {
		r.GET("/ws", gin.WrapF(d.WebSocket))
	}
	return r
}

func health(agg *cluster.HealthAggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if agg == nil {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
			return
		}
		if failures := agg.Run(c.Request.Context()); len(failures) > 0 {
			c.JSON(http.StatusServiceUnavailable, failures)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "checks": agg.Names()})
	}
}

func listGames(dir *session.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := dir.Snapshot()
		c.JSON(http.StatusOK, gin.H{"games": l.Games, "sessions": l.Sessions, "updated": l.Updated})
	}
}

func listLobbies(dir *session.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := dir.Snapshot()
		c.JSON(http.StatusOK, gin.H{"lobbies": l.Lobbies, "updated": l.Updated})
	}
}

// showGame returns the spectator view of one game in wire format.
func showGame(dir *session.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
			return
		}
		view, ok := dir.Snapshot().View(id)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no such game"})
			return
		}
		st := network.NewGameStatus(view)
		st.MessageType = network.TypeGameStatus
		c.JSON(http.StatusOK, st)
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}
