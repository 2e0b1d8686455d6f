package models

import (
	"strings"
	"time"
)

// Person sources.
const (
	SourceManual = "manual"
	SourceCSV    = "csv"
)

// Person is a catalogued contact. Card* toggles choose which flashcard
// directions are generated on export.
type Person struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	FaceFilename          string    `json:"face_filename"`
	Context               string    `json:"context"`
	CardFaceToName        bool      `json:"card_face_to_name"`
	CardNameToFace        bool      `json:"card_name_to_face"`
	CardNameFaceToContext bool      `json:"card_name_face_to_context"`
	CardContextToPerson   bool      `json:"card_context_to_person"`
	Source                string    `json:"source"`
	SourceURL             string    `json:"source_url"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// NewPerson returns a person with the default card toggles.
func NewPerson(name string) *Person {
	return &Person{
		Name:                  name,
		CardFaceToName:        true,
		CardNameToFace:        true,
		CardNameFaceToContext: true,
		Source:                SourceManual,
	}
}

// HasContext reports whether the person has a non-blank context note.
func (p *Person) HasContext() bool {
	return strings.TrimSpace(p.Context) != ""
}

// ApplyToggles copies any toggle set in req onto p.
func (p *Person) ApplyToggles(req *PersonRequest) {
	if req.CardFaceToName != nil {
		p.CardFaceToName = *req.CardFaceToName
	}
	if req.CardNameToFace != nil {
		p.CardNameToFace = *req.CardNameToFace
	}
	if req.CardNameFaceToContext != nil {
		p.CardNameFaceToContext = *req.CardNameFaceToContext
	}
	if req.CardContextToPerson != nil {
		p.CardContextToPerson = *req.CardContextToPerson
	}
}

// ImportRow is one candidate person parsed from a CSV upload.
type ImportRow struct {
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url"`
	Context  string `json:"context"`
}
