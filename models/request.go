package models

import "strings"

// ScrapeRequest is the payload for POST /scrape/url.
//
// URL carries no binding tag: an empty URL must produce the exact
// "URL is required" message rather than a validator error.
type ScrapeRequest struct {
	URL string `json:"url"`
}

// SummarizeRequest is the payload for POST /scrape/summarize.
type SummarizeRequest struct {
	Description string `json:"description"`
	Name        string `json:"name"`
}

// Defaults trims surrounding whitespace.
func (r *SummarizeRequest) Defaults() {
	r.Description = strings.TrimSpace(r.Description)
	r.Name = strings.TrimSpace(r.Name)
}

// PersonRequest is the payload for creating or updating a person.
type PersonRequest struct {
	Name                  string `json:"name"`
	Context               string `json:"context"`
	Source                string `json:"source"`
	SourceURL             string `json:"source_url"`
	FaceFilename          string `json:"face_filename"`
	ScrapedFaceFilename   string `json:"scraped_face_filename"`
	CardFaceToName        *bool  `json:"card_face_to_name"`
	CardNameToFace        *bool  `json:"card_name_to_face"`
	CardNameFaceToContext *bool  `json:"card_name_face_to_context"`
	CardContextToPerson   *bool  `json:"card_context_to_person"`
}

// Defaults trims text fields and fills the source for new records.
func (r *PersonRequest) Defaults() {
	r.Name = strings.TrimSpace(r.Name)
	r.Context = strings.TrimSpace(r.Context)
	r.SourceURL = strings.TrimSpace(r.SourceURL)
	r.FaceFilename = strings.TrimSpace(r.FaceFilename)
	r.ScrapedFaceFilename = strings.TrimSpace(r.ScrapedFaceFilename)
	if r.Source == "" {
		r.Source = SourceManual
	}
}

// DuplicateCheckRequest is the payload for POST /check-duplicate.
type DuplicateCheckRequest struct {
	Name      string `json:"name"`
	ExcludeID string `json:"exclude_id"`
}

// ImportConfirmRequest is the payload for POST /import/csv/confirm.
type ImportConfirmRequest struct {
	Rows []ImportRow `json:"rows"`
}

// DeckExportRequest is the payload for POST /deck/export.
// An empty PersonIDs exports everyone.
type DeckExportRequest struct {
	PersonIDs []string `json:"person_ids"`
}
