package api

import (
	"fmt"
	"net/http"

	"github.com/RichardKnop/machinery/v1/tasks"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/geosure/climate-risk-api/background"
	"github.com/geosure/climate-risk-api/schema"
	"github.com/geosure/climate-risk-api/store"
)

const batchRunListLimit = 20

// listBatchRuns reports the most recent batch runs, newest first. The
// active run, if any, appears with status RUNNING.
func (s *Server) listBatchRuns(c *gin.Context) {
	runs, err := s.store.ListBatchRuns(c.Request.Context(), batchRunListLimit)
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch_runs": runs,
	})
}

// latestBatchRun reports the newest run's status, unit counts, sampled
// failure reasons, and timestamps.
func (s *Server) latestBatchRun(c *gin.Context) {
	run, err := s.store.GetLatestBatchRun(c.Request.Context())
	if err == store.ErrBatchRunNotFound {
		abortWithEncoding(c, http.StatusNotFound, errorNoBatchRun)
		return
	}
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

// forceBatchRun enqueues an on-demand recompute trigger for a named batch
// type "now". The risk worker answers "already running" for a duplicate
// trigger; the acknowledgment itself is never lost.
func (s *Server) forceBatchRun(c *gin.Context) {
	var params struct {
		BatchType string `json:"batch_type"`
	}

	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	if _, err := schema.BatchType(params.BatchType).Hazards(); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorUnknownBatchType, err)
		return
	}

	signature := &tasks.Signature{
		UUID: fmt.Sprintf("task_%s", uuid.New().String()),
		Name: background.RecomputeTaskName,
		Args: []tasks.Arg{
			{Type: "string", Value: params.BatchType},
		},
	}
	if _, err := s.background.SendTask(signature); err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorEnqueueBatch, err)
		return
	}

	// The trigger is asynchronous; the run itself is reported by
	// /batch-runs/latest once the worker picks the task up.
	c.JSON(http.StatusAccepted, gin.H{
		"result":  "OK",
		"task_id": signature.UUID,
	})
}
