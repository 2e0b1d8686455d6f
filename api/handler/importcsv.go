package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/facecards/importer"
	"github.com/use-agent/facecards/models"
)

// RowImporter creates people from confirmed CSV rows.
type RowImporter interface {
	Confirm(ctx context.Context, rows []models.ImportRow) (int, error)
}

// ImportPreview returns a handler for POST /import/csv. The uploaded file
// (multipart field "csv_file") is parsed into rows for the user to review;
// nothing is stored.
func ImportPreview() gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("csv_file")
		if err != nil || fh.Filename == "" {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, "Please select a CSV file.", err))
			return
		}
		f, err := fh.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer f.Close()

		rows, err := importer.Parse(f)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.ImportPreviewResponse{Rows: rows})
	}
}

// ImportConfirm returns a handler for POST /import/csv/confirm.
func ImportConfirm(im RowImporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ImportConfirmRequest
		if !bindOptionalJSON(c, &req) {
			return
		}
		n, err := im.Confirm(c.Request.Context(), req.Rows)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.ImportConfirmResponse{Imported: n})
	}
}
