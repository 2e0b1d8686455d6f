package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/facecards/deck"
	"github.com/use-agent/facecards/models"
)

// ExportDeck returns a handler for POST /deck/export. With no person_ids
// every person is exported.
func ExportDeck(st PeopleStore, photos deck.MediaSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DeckExportRequest
		if !bindOptionalJSON(c, &req) {
			return
		}

		ctx := c.Request.Context()
		var (
			people []*models.Person
			err    error
		)
		if len(req.PersonIDs) > 0 {
			people, err = st.ListByIDs(ctx, req.PersonIDs)
		} else {
			people, err = st.List(ctx, "")
		}
		if err != nil {
			respondError(c, err)
			return
		}
		if len(people) == 0 {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, "No people to export.", nil))
			return
		}

		// Build in memory so a failure can still be reported as JSON.
		var buf bytes.Buffer
		if err := deck.Write(ctx, &buf, people, photos); err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+deck.Filename+`"`)
		c.Data(http.StatusOK, "application/octet-stream", buf.Bytes())
	}
}
