package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/locotek/presskit/internal/models"
	"github.com/locotek/presskit/services/presskit-service/internal/submission"
)

// Submitter is the submission pipeline behind the endpoint.
type Submitter interface {
	Submit(ctx context.Context, body []byte, meta models.Metadata) (submission.Result, error)
}

// Handlers serves the press-kit API routes.
type Handlers struct {
	submitter Submitter
}

// NewHandlers creates handlers backed by s.
func NewHandlers(s Submitter) *Handlers {
	return &Handlers{submitter: s}
}

// Health handles GET /api/presskit.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Submit handles POST /api/presskit.
func (h *Handlers) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	log := zerolog.Ctx(ctx)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Error().Err(err).Msg("error reading request body")
		c.JSON(http.StatusInternalServerError, gin.H{"error": submission.MsgProcessingFailed})
		return
	}

	res, err := h.submitter.Submit(ctx, body, submission.MetadataFromHeader(c.Request.Header))
	if err != nil {
		var ve *submission.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
			return
		}
		log.Error().Err(err).Msg("error processing request")
		c.JSON(http.StatusInternalServerError, gin.H{"error": submission.PublicMessage(err)})
		return
	}

	c.JSON(http.StatusOK, models.DownloadResponse{
		Success:     true,
		DownloadURL: res.DownloadURL,
	})
}
