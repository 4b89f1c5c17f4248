package web

import (
	"errors"
	"net/http"

	"github.com/alexanderramin/releaseplan/internal/contract"
	"github.com/alexanderramin/releaseplan/internal/service"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": contract.StatusOK})
}

func (s *Server) handleReleasePlan(c *gin.Context) {
	plan, err := s.plans.BuildReleasePlan(c.Request.Context(), s.opts.Project)
	if err != nil {
		s.log.Error().Err(err).Str("project", s.opts.Project).Msg("building release plan")
		c.JSON(http.StatusInternalServerError, contract.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, plan.Normalized())
}

func (s *Server) handleCachedPlan(c *gin.Context) {
	snap, err := s.plans.Cached(c.Request.Context())
	switch {
	case errors.Is(err, service.ErrSnapshotEmpty):
		c.JSON(http.StatusNotFound, contract.ErrorResponse{Error: service.ErrSnapshotEmpty.Error()})
		return
	case err != nil:
		s.log.Error().Err(err).Msg("reading cached release plan")
		c.JSON(http.StatusServiceUnavailable, contract.ErrorResponse{Error: service.ErrCacheUnavailable.Error()})
		return
	}
	c.JSON(http.StatusOK, contract.NewCachedPlanResponse(snap))
}

func (s *Server) handleTestConnection(c *gin.Context) {
	status := contract.NewConnectionStatus(s.conn.TestConnection(c.Request.Context()))
	if !status.OK() {
		c.JSON(http.StatusInternalServerError, status)
		return
	}
	c.JSON(http.StatusOK, status)
}
