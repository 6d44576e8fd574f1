package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/DeveloperTechForest/nodevideocall/internal/core"
	"github.com/DeveloperTechForest/nodevideocall/internal/domain"
	"github.com/DeveloperTechForest/nodevideocall/internal/metrics"
	"github.com/DeveloperTechForest/nodevideocall/internal/uploads"
)

// UploadHandler stores a multipart file and, when a room is named,
// announces it into the room. Unlike connection-originated chat the
// announcement reaches the full membership: the uploader is an HTTP
// caller, not a room member with a transport of its own to echo into.
func UploadHandler(store *uploads.Store, engine *core.Engine, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
			return
		}

		src, err := fh.Open()
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.httpapi").Msg("open upload")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
			return
		}
		defer src.Close()

		stored, err := store.Save(fh.Filename, src)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.httpapi").Msg("store upload")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
			return
		}
		fileURL := uploads.PublicURL(stored)
		if m != nil {
			m.Uploads.Inc()
		}

		if room := c.PostForm("room"); room != "" {
			engine.Announce(domain.RoomName(room), c.PostForm("from"),
				"File available: "+fh.Filename, fileURL)
		}

		log.Info().Str("module", "adapters.httpapi").
			Str("file", fh.Filename).Str("stored", stored).
			Msg("file uploaded")

		c.JSON(http.StatusOK, gin.H{
			"fileUrl":      fileURL,
			"originalName": fh.Filename,
		})
	}
}
