package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/abel123/zeus/pkg/bridge"
)

const DefaultBind = ":8010"

const shutdownTimeout = 5 * time.Second

var log = logrus.WithField("component", "server")

// Server exposes the chart bridge and the control API.
type Server struct {
	Bind string
	Hub  *bridge.Hub

	// AllowOrigins defaults to any origin.
	AllowOrigins []string

	srv *http.Server
}

func New(bind string, hub *bridge.Hub) *Server {
	if bind == "" {
		bind = DefaultBind
	}

	return &Server{Bind: bind, Hub: hub}
}

func (s *Server) newEngine() *gin.Engine {
	origins := s.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowWebSockets:  true,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws/chart", gin.WrapF(s.Hub.ServeWS))

	r.GET("/api/charts", s.listCharts)
	r.POST("/api/charts/:id/refresh", s.refreshChart)
	r.PUT("/api/charts/:id/enabled", s.setChartEnabled)
	r.POST("/api/charts/:id/replay", s.setChartReplay)
	r.DELETE("/api/charts/:id/replay", s.clearChartReplay)

	return r
}

// Run serves until ctx is done, then shuts the listener down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Bind)
	if err != nil {
		return errors.Wrapf(err, "unable to listen on %s", s.Bind)
	}

	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.srv = &http.Server{
		Handler:           s.newEngine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", ln.Addr())
		errC <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "http server")

	case <-ctx.Done():
	}

	log.Info("shutting down web server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server forced to shutdown")
	}

	log.Info("server shutdown completed")
	return nil
}
