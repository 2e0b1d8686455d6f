package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/facecards/media"
	"github.com/use-agent/facecards/models"
	"github.com/use-agent/facecards/store"
)

// PeopleStore persists people.
type PeopleStore interface {
	Create(ctx context.Context, p *models.Person) error
	Get(ctx context.Context, id string) (*models.Person, error)
	Update(ctx context.Context, p *models.Person) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query string) ([]*models.Person, error)
	FindDuplicate(ctx context.Context, name, excludeID string) (*models.Person, error)
	ListByIDs(ctx context.Context, ids []string) ([]*models.Person, error)
}

// PhotoStore holds optimised face photos.
type PhotoStore interface {
	Save(ctx context.Context, r io.Reader) (string, error)
	Remove(ctx context.Context, name string) error
	Path(name string) (string, error)
}

const msgNameRequired = "Name is required."

// ListPeople returns a handler for GET /people?q=.
func ListPeople(st PeopleStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		people, err := st.List(c.Request.Context(), strings.TrimSpace(c.Query("q")))
		if err != nil {
			respondError(c, err)
			return
		}
		if people == nil {
			people = []*models.Person{}
		}
		c.JSON(http.StatusOK, people)
	}
}

// GetPerson returns a handler for GET /people/:id.
func GetPerson(st PeopleStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := loadPerson(c, st)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// CreatePerson returns a handler for POST /people. An uploaded photo wins
// over one saved by the scraper.
func CreatePerson(st PeopleStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.PersonRequest
		if !bindOptionalJSON(c, &req) {
			return
		}
		req.Defaults()
		if req.Name == "" {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, msgNameRequired, nil))
			return
		}

		p := models.NewPerson(req.Name)
		p.Context = req.Context
		p.Source = req.Source
		p.SourceURL = req.SourceURL
		p.ApplyToggles(&req)
		switch {
		case req.FaceFilename != "":
			p.FaceFilename = media.SafeName(req.FaceFilename)
		case req.ScrapedFaceFilename != "":
			p.FaceFilename = media.SafeName(req.ScrapedFaceFilename)
		}

		if err := st.Create(c.Request.Context(), p); err != nil {
			respondError(c, err)
			return
		}
		slog.Info("person added", "id", p.ID, "source", p.Source)
		c.JSON(http.StatusCreated, p)
	}
}

// UpdatePerson returns a handler for PUT /people/:id.
//
// An uploaded face_filename replaces the current photo and deletes the old
// file. A scraped_face_filename is only used when the person has no photo.
func UpdatePerson(st PeopleStore, photos PhotoStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := loadPerson(c, st)
		if err != nil {
			respondError(c, err)
			return
		}

		var req models.PersonRequest
		if !bindOptionalJSON(c, &req) {
			return
		}
		req.Defaults()
		if req.Name == "" {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, msgNameRequired, nil))
			return
		}

		p.Name = req.Name
		p.Context = req.Context
		p.SourceURL = req.SourceURL
		p.ApplyToggles(&req)

		uploaded := media.SafeName(req.FaceFilename)
		switch {
		case uploaded != "" && uploaded != p.FaceFilename:
			if p.FaceFilename != "" {
				if err := photos.Remove(c.Request.Context(), p.FaceFilename); err != nil {
					slog.Warn("old photo not removed", "id", p.ID, "file", p.FaceFilename, "error", err)
				}
			}
			p.FaceFilename = uploaded
		case req.ScrapedFaceFilename != "" && p.FaceFilename == "":
			p.FaceFilename = media.SafeName(req.ScrapedFaceFilename)
		}

		if err := st.Update(c.Request.Context(), p); err != nil {
			respondError(c, mapStoreError(err))
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// DeletePerson returns a handler for DELETE /people/:id. The person's photo
// is removed with them.
func DeletePerson(st PeopleStore, photos PhotoStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := loadPerson(c, st)
		if err != nil {
			respondError(c, err)
			return
		}
		if p.FaceFilename != "" {
			if err := photos.Remove(c.Request.Context(), p.FaceFilename); err != nil {
				slog.Warn("photo not removed", "id", p.ID, "file", p.FaceFilename, "error", err)
			}
		}
		if err := st.Delete(c.Request.Context(), p.ID); err != nil {
			respondError(c, mapStoreError(err))
			return
		}
		slog.Info("person deleted", "id", p.ID)
		c.Status(http.StatusNoContent)
	}
}

// UploadPhoto returns a handler for POST /people/photo (multipart field
// "photo"). The image is optimised and stored; the stored name is returned
// for a following create or update.
func UploadPhoto(photos PhotoStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("photo")
		if err != nil {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, "Please select a photo.", err))
			return
		}
		if !media.AllowedUpload(fh.Filename) {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput,
				"Unsupported image type. Allowed: png, jpg, jpeg, gif, webp.", nil))
			return
		}

		f, err := fh.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer f.Close()

		name, err := photos.Save(c.Request.Context(), f)
		if err != nil {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, "Could not read image: "+err.Error(), err))
			return
		}
		c.JSON(http.StatusCreated, models.UploadResponse{FaceFilename: name})
	}
}

// CheckDuplicate returns a handler for POST /check-duplicate. Names are
// compared case-insensitively; exclude_id skips the person being edited.
func CheckDuplicate(st PeopleStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DuplicateCheckRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, models.DuplicateCheckResponse{})
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			c.JSON(http.StatusOK, models.DuplicateCheckResponse{})
			return
		}

		existing, err := st.FindDuplicate(c.Request.Context(), name, req.ExcludeID)
		if err != nil {
			respondError(c, err)
			return
		}
		if existing == nil {
			c.JSON(http.StatusOK, models.DuplicateCheckResponse{})
			return
		}
		c.JSON(http.StatusOK, models.DuplicateCheckResponse{
			Duplicate:       true,
			ExistingID:      existing.ID,
			ExistingName:    existing.Name,
			ExistingContext: existing.Context,
			ExistingFace:    existing.FaceFilename,
		})
	}
}

// ServeMedia returns a handler for GET /media/:filename.
func ServeMedia(photos PhotoStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		path, err := photos.Path(c.Param("filename"))
		if err != nil {
			respondError(c, models.NewScrapeError(models.ErrCodeNotFound, "File not found.", err))
			return
		}
		c.File(path)
	}
}

func loadPerson(c *gin.Context, st PeopleStore) (*models.Person, error) {
	p, err := st.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, mapStoreError(err)
	}
	return p, nil
}

func mapStoreError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return models.NewScrapeError(models.ErrCodeNotFound, "Person not found.", err)
	}
	return err
}
