// Package importer turns a CSV of contacts into people.
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/use-agent/facecards/models"
)

// User-facing parse errors.
const (
	msgNoNameColumn = "CSV must have at least a 'name' column."
	msgNoRows       = "No valid rows found in CSV."
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads a CSV upload into preview rows. Headers are matched
// case-insensitively; only "name" is required. The photo comes from the
// "photo_url" column, falling back to "photo". Rows with a blank name are
// skipped.
func Parse(r io.Reader) ([]models.ImportRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "Error reading CSV: "+err.Error(), err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, msgNoNameColumn, nil)
	}
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "Error reading CSV: "+err.Error(), err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}
	if _, ok := columns["name"]; !ok {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, msgNoNameColumn, nil)
	}

	field := func(record []string, key string) string {
		i, ok := columns[key]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []models.ImportRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "Error reading CSV: "+err.Error(), err)
		}
		name := field(record, "name")
		if name == "" {
			continue
		}
		photo := field(record, "photo_url")
		if photo == "" {
			photo = field(record, "photo")
		}
		rows = append(rows, models.ImportRow{
			Name:     name,
			PhotoURL: photo,
			Context:  field(record, "context"),
		})
	}

	if len(rows) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, msgNoRows, nil)
	}
	return rows, nil
}

// PhotoFetcher downloads and stores a photo without placeholder checks.
type PhotoFetcher interface {
	DownloadUnchecked(ctx context.Context, imageURL string) (string, error)
}

// PersonCreator persists a new person.
type PersonCreator interface {
	Create(ctx context.Context, p *models.Person) error
}

// Importer creates people from confirmed preview rows.
type Importer struct {
	people       PersonCreator
	photos       PhotoFetcher
	photoTimeout time.Duration
}

// New creates an Importer. photos may be nil, in which case imported people
// get no face.
func New(people PersonCreator, photos PhotoFetcher, photoTimeout time.Duration) *Importer {
	return &Importer{people: people, photos: photos, photoTimeout: photoTimeout}
}

// Confirm creates one person per row with a non-blank name and returns how
// many were created. A photo that fails to download leaves the face empty.
func (im *Importer) Confirm(ctx context.Context, rows []models.ImportRow) (int, error) {
	imported := 0
	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			continue
		}

		p := models.NewPerson(name)
		p.Context = strings.TrimSpace(row.Context)
		p.Source = models.SourceCSV
		p.FaceFilename = im.fetchPhoto(ctx, row.PhotoURL)

		if err := im.people.Create(ctx, p); err != nil {
			return imported, fmt.Errorf("import %q: %w", name, err)
		}
		imported++
	}
	slog.Info("csv import finished", "rows", len(rows), "imported", imported)
	return imported, nil
}

func (im *Importer) fetchPhoto(ctx context.Context, photoURL string) string {
	photoURL = strings.TrimSpace(photoURL)
	if photoURL == "" || im.photos == nil {
		return ""
	}
	if im.photoTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, im.photoTimeout)
		defer cancel()
	}
	name, err := im.photos.DownloadUnchecked(ctx, photoURL)
	if err != nil {
		slog.Warn("import photo download failed", "url", photoURL, "error", err)
		return ""
	}
	return name
}
