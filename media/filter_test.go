package media

import "testing"

func TestIsValidProfileImage(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"", false},
		{"https://static.licdn.com/aero-v1/sc/h/1c5u578iilxfi4m4dvc4q810q", false},
		{"https://cdn.example.com/img/ghost-person.png", false},
		{"https://cdn.example.com/DEFAULT_avatar.jpg", false},
		{"https://example.com/placeholder.png", false},
		{"https://example.com/no-photo.jpg", false},
		{"https://example.com/No_Photo.jpg", false},
		{"https://pbs.twimg.com/profile_images/1234/abc_400x400.jpg", true},
		{"https://media.licdn.com/dms/image/v2/D4E03AQ/profile-displayphoto-shrink_400_400/0/1?e=1&v=beta", true},
	}
	for _, tt := range tests {
		if got := IsValidProfileImage(tt.url); got != tt.want {
			t.Errorf("IsValidProfileImage(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestCandidateReason(t *testing.T) {
	c := Candidate("https://example.com/placeholder.png")
	if c.Valid {
		t.Fatal("placeholder candidate marked valid")
	}
	if c.Reason == "" {
		t.Error("rejected candidate has no reason")
	}
}
