package models

// ScrapeResponse is the body of a successful POST /scrape/url.
type ScrapeResponse struct {
	Name string `json:"name"`

	// FaceFilename is the stored photo, or null when no image was saved.
	FaceFilename *string `json:"face_filename"`

	// Context1 is the cleaned description truncated to the form field limit.
	Context1 string `json:"context1"`

	RawDescription string `json:"raw_description"`

	// Source is the detected platform.
	Source string `json:"source"`

	// SourceURL is the URL that was actually fetched (after normalisation).
	SourceURL string `json:"source_url"`

	// Warnings lists non-fatal extraction shortfalls in extraction order.
	Warnings []string `json:"warnings"`
}

// SummarizeResponse is the body of POST /scrape/summarize.
type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// DuplicateCheckResponse is the body of POST /check-duplicate.
type DuplicateCheckResponse struct {
	Duplicate       bool   `json:"duplicate"`
	ExistingID      string `json:"existing_id,omitempty"`
	ExistingName    string `json:"existing_name,omitempty"`
	ExistingContext string `json:"existing_context,omitempty"`
	ExistingFace    string `json:"existing_face,omitempty"`
}

// UploadResponse is the body of POST /people/photo.
type UploadResponse struct {
	FaceFilename string `json:"face_filename"`
}

// ImportPreviewResponse is the body of POST /import/csv.
type ImportPreviewResponse struct {
	Rows []ImportRow `json:"rows"`
}

// ImportConfirmResponse is the body of POST /import/csv/confirm.
type ImportConfirmResponse struct {
	Imported int `json:"imported"`
}

// HealthResponse is the payload for GET /health.
type HealthResponse struct {
	Status     string `json:"status"`
	Uptime     string `json:"uptime"`
	Version    string `json:"version"`
	LLMEnabled bool   `json:"llm_enabled"`
	LinkedIn   bool   `json:"linkedin_session"`
	Browser    bool   `json:"browser_enabled"`
}
