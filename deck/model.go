package deck

import (
	"encoding/json"
	"strconv"
)

// Stable identifiers. Re-importing a newer export updates the existing
// note type and deck in Anki instead of creating copies.
const (
	ModelID   int64 = 1704067337
	DeckID    int64 = 1704067338
	ModelName       = "Names and Faces"
	DeckName        = "Names and Faces"
)

// Field order of the note type. Toggle fields hold "1" or "" and gate
// the template with the same position in templates.
var fieldNames = []string{
	"Name",
	"Face",
	"Context",
	"FaceToName",
	"NameToFace",
	"NameFaceToContext",
	"ContextToPerson",
}

const (
	fieldName = iota
	fieldFace
	fieldContext
	fieldFaceToName
	fieldNameToFace
	fieldNameFaceToContext
	fieldContextToPerson
)

const answerBlock = `<hr id="answer">
<div class="name">{{Name}}</div>
{{#Face}}<div class="face">{{Face}}</div>{{/Face}}
{{#Context}}<div class="context">{{Context}}</div>{{/Context}}`

type template struct {
	Name     string
	Question string
	Answer   string
	// Required lists the fields that must be non-empty for a card.
	Required []int
}

// Anki skips a card whose question renders empty, so each question is
// wrapped in its toggle field.
var templates = []template{
	{
		Name:     "Face to Name",
		Question: `{{#FaceToName}}{{#Face}}<div class="face">{{Face}}</div><div class="prompt">Who is this?</div>{{/Face}}{{/FaceToName}}`,
		Answer:   `<div class="back">{{FrontSide}}</div>` + answerBlock,
		Required: []int{fieldFace, fieldFaceToName},
	},
	{
		Name:     "Name to Face",
		Question: `{{#NameToFace}}<div class="name">{{Name}}</div><div class="prompt">Picture their face.</div>{{/NameToFace}}`,
		Answer:   `<div class="back">{{FrontSide}}</div>` + answerBlock,
		Required: []int{fieldNameToFace},
	},
	{
		Name:     "Name and Face to Context",
		Question: `{{#NameFaceToContext}}<div class="face">{{Face}}</div><div class="name">{{Name}}</div><div class="prompt">Where do you know them from?</div>{{/NameFaceToContext}}`,
		Answer:   `<div class="back">{{FrontSide}}</div>` + answerBlock,
		Required: []int{fieldNameFaceToContext},
	},
	{
		Name:     "Context to Person",
		Question: `{{#ContextToPerson}}<div class="context">{{Context}}</div><div class="prompt">Who is this?</div>{{/ContextToPerson}}`,
		Answer:   `<div class="back">{{FrontSide}}</div>` + answerBlock,
		Required: []int{fieldContextToPerson},
	},
}

const cardCSS = `.card {
  font-family: -apple-system, "Helvetica Neue", Arial, sans-serif;
  font-size: 22px;
  text-align: center;
  color: #1d1d1f;
  background-color: #fafafa;
}
.face img { max-width: 320px; max-height: 320px; border-radius: 12px; }
.name { font-size: 28px; font-weight: 600; margin: 12px 0; }
.context { font-size: 18px; color: #555; margin: 8px 0; }
.prompt { font-size: 16px; color: #888; margin-top: 16px; }
.back .prompt { display: none; }
`

func modelsJSON(modSeconds int64) (string, error) {
	flds := make([]map[string]any, len(fieldNames))
	for i, name := range fieldNames {
		flds[i] = map[string]any{
			"name":   name,
			"ord":    i,
			"font":   "Arial",
			"size":   20,
			"media":  []string{},
			"rtl":    false,
			"sticky": false,
		}
	}

	tmpls := make([]map[string]any, len(templates))
	req := make([][]any, len(templates))
	for i, t := range templates {
		tmpls[i] = map[string]any{
			"name":  t.Name,
			"ord":   i,
			"qfmt":  t.Question,
			"afmt":  t.Answer,
			"bqfmt": "",
			"bafmt": "",
			"did":   nil,
		}
		req[i] = []any{i, "all", t.Required}
	}

	id := strconv.FormatInt(ModelID, 10)
	model := map[string]any{
		id: map[string]any{
			"id":        ModelID,
			"name":      ModelName,
			"type":      0,
			"mod":       modSeconds,
			"usn":       -1,
			"sortf":     fieldName,
			"did":       DeckID,
			"tmpls":     tmpls,
			"flds":      flds,
			"css":       cardCSS,
			"latexPre":  "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n\\setlength{\\parindent}{0in}\n\\begin{document}\n",
			"latexPost": "\\end{document}",
			"latexsvg":  false,
			"req":       req,
			"tags":      []string{},
			"vers":      []any{},
		},
	}
	b, err := json.Marshal(model)
	return string(b), err
}

func deckEntry(id int64, name string, modSeconds int64) map[string]any {
	return map[string]any{
		"id":               id,
		"name":             name,
		"desc":             "",
		"mod":              modSeconds,
		"usn":              -1,
		"conf":             1,
		"dyn":              0,
		"collapsed":        false,
		"browserCollapsed": false,
		"extendNew":        10,
		"extendRev":        50,
		"newToday":         []int{0, 0},
		"revToday":         []int{0, 0},
		"lrnToday":         []int{0, 0},
		"timeToday":        []int{0, 0},
	}
}

func decksJSON(modSeconds int64) (string, error) {
	decks := map[string]any{"1": deckEntry(1, "Default", modSeconds)}
	decks[strconv.FormatInt(DeckID, 10)] = deckEntry(DeckID, DeckName, modSeconds)
	b, err := json.Marshal(decks)
	return string(b), err
}

func collectionConfJSON() (string, error) {
	b, err := json.Marshal(map[string]any{
		"activeDecks":   []int64{1},
		"curDeck":       1,
		"newSpread":     0,
		"collapseTime":  1200,
		"timeLim":       0,
		"estTimes":      true,
		"dueCounts":     true,
		"curModel":      nil,
		"nextPos":       1,
		"sortType":      "noteFld",
		"sortBackwards": false,
		"addToCur":      true,
	})
	return string(b), err
}

func deckConfJSON(modSeconds int64) (string, error) {
	b, err := json.Marshal(map[string]any{
		"1": map[string]any{
			"id":       1,
			"name":     "Default",
			"mod":      modSeconds,
			"usn":      0,
			"maxTaken": 60,
			"autoplay": true,
			"timer":    0,
			"replayq":  true,
			"dyn":      false,
			"new": map[string]any{
				"bury":          true,
				"delays":        []float64{1, 10},
				"initialFactor": 2500,
				"ints":          []int{1, 4, 7},
				"order":         1,
				"perDay":        20,
				"separate":      true,
			},
			"lapse": map[string]any{
				"delays":      []float64{10},
				"leechAction": 0,
				"leechFails":  8,
				"minInt":      1,
				"mult":        0,
			},
			"rev": map[string]any{
				"bury":     true,
				"ease4":    1.3,
				"fuzz":     0.05,
				"ivlFct":   1,
				"maxIvl":   36500,
				"minSpace": 1,
				"perDay":   100,
			},
		},
	})
	return string(b), err
}
