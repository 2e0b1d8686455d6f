package media

import "strings"

// placeholderMarkers are URL fragments of known placeholder, sprite and
// default-avatar images. Unknown URLs pass.
var placeholderMarkers = []string{
	"/aero-v1/sc/h/", // LinkedIn static sprite CDN
	"ghost",
	"default",
	"placeholder",
	"no-photo",
	"no_photo",
}

// ImageCandidate is a candidate profile photo URL with its verdict.
type ImageCandidate struct {
	URL    string
	Valid  bool
	Reason string
}

// Candidate classifies url.
func Candidate(url string) ImageCandidate {
	if url == "" {
		return ImageCandidate{Reason: "empty url"}
	}
	lower := strings.ToLower(url)
	for _, m := range placeholderMarkers {
		if strings.Contains(lower, m) {
			return ImageCandidate{URL: url, Reason: "matches placeholder pattern " + m}
		}
	}
	return ImageCandidate{URL: url, Valid: true}
}

// IsValidProfileImage reports whether url may be a real profile photo.
func IsValidProfileImage(url string) bool {
	return Candidate(url).Valid
}
