package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/abel123/zeus/pkg/types"
	"github.com/abel123/zeus/pkg/zen"
)

type chartSummary struct {
	ID       string     `json:"id"`
	Attached bool       `json:"attached"`
	Stats    *zen.Stats `json:"stats,omitempty"`
}

func (s *Server) listCharts(c *gin.Context) {
	charts := []chartSummary{}
	for _, session := range s.Hub.Sessions() {
		summary := chartSummary{ID: session.ID()}
		if stats, ok := session.Stats(); ok {
			summary.Attached = true
			summary.Stats = &stats
		}
		charts = append(charts, summary)
	}

	c.JSON(http.StatusOK, gin.H{"charts": charts})
}

// controller looks up the chart of the :id param and writes a 404 when it is not ready.
func (s *Server) controller(c *gin.Context) (*zen.Controller, bool) {
	id := c.Param("id")

	session, ok := s.Hub.Session(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("chart %s not found", id)})
		return nil, false
	}

	_, ctrl := session.Chart()
	if ctrl == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("chart %s is not ready", id)})
		return nil, false
	}

	return ctrl, true
}

func (s *Server) refreshChart(c *gin.Context) {
	ctrl, ok := s.controller(c)
	if !ok {
		return
	}

	if err := ctrl.Refresh(c.Request.Context()); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, zen.ErrDisposed) {
			status = http.StatusGone
		}

		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": ctrl.Stats()})
}

func (s *Server) setChartEnabled(c *gin.Context) {
	ctrl, ok := s.controller(c)
	if !ok {
		return
	}

	payload := struct {
		Enabled *bool `json:"enabled"`
	}{}

	if err := c.ShouldBindJSON(&payload); err != nil || payload.Enabled == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing enabled argument"})
		return
	}

	ctrl.SetEnabled(*payload.Enabled)
	c.JSON(http.StatusOK, gin.H{"stats": ctrl.Stats()})
}

func (s *Server) setChartReplay(c *gin.Context) {
	ctrl, ok := s.controller(c)
	if !ok {
		return
	}

	payload := struct {
		Time types.Timestamp `json:"time"`
	}{}

	if err := c.ShouldBindJSON(&payload); err != nil || payload.Time <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing time argument"})
		return
	}

	ctrl.SetReplay(payload.Time)
	c.JSON(http.StatusOK, gin.H{"stats": ctrl.Stats()})
}

func (s *Server) clearChartReplay(c *gin.Context) {
	ctrl, ok := s.controller(c)
	if !ok {
		return
	}

	ctrl.ClearReplay()
	c.JSON(http.StatusOK, gin.H{"stats": ctrl.Stats()})
}
