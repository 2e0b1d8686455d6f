package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

// recordingStore is an Optimizer that remembers the temp path it was given.
type recordingStore struct {
	path    string
	existed bool
}

func (s *recordingStore) OptimizeAndStore(_ context.Context, p string) (string, error) {
	s.path = p
	_, err := os.Stat(p)
	s.existed = err == nil
	return "stored.jpg", nil
}

func noisyPNG(t *testing.T) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestDownloader(srv *httptest.Server, store Optimizer) *Downloader {
	return NewDownloader(srv.Client(), store, 5*time.Second)
}

func TestDownloadStoresImageAndRemovesTemp(t *testing.T) {
	body := noisyPNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	store := &recordingStore{}
	name, err := newTestDownloader(srv, store).Download(context.Background(), srv.URL+"/photo.png", nil)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if name != "stored.jpg" {
		t.Errorf("name = %q", name)
	}
	if !store.existed {
		t.Error("temp file did not exist when handed to the store")
	}
	if _, statErr := os.Stat(store.path); !os.IsNotExist(statErr) {
		t.Errorf("temp file %s not removed", store.path)
	}
}

func TestDownloadRejections(t *testing.T) {
	big := bytes.Repeat([]byte{0xff}, 5000)
	tests := []struct {
		name    string
		url     string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "empty url",
			want: ReasonNoURL,
		},
		{
			name: "placeholder url",
			url:  "/ghost.png",
			want: ReasonPlaceholder,
		},
		{
			name: "forbidden",
			url:  "/a.jpg",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
			want: "Failed to download image: 403 Forbidden",
		},
		{
			name: "html instead of image",
			url:  "/a.jpg",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.Write(big)
			},
			want: "URL returned text/html, not an image",
		},
		{
			name: "svg",
			url:  "/a.svg",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "image/svg+xml")
				w.Write(big)
			},
			want: ReasonSVG,
		},
		{
			name: "small content-length",
			url:  "/a.jpg",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "image/jpeg")
				w.Write(big[:500])
			},
			want: ReasonTooSmall,
		},
		{
			name: "small streamed body",
			url:  "/a.jpg",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "image/jpeg")
				w.WriteHeader(http.StatusOK)
				w.(http.Flusher).Flush()
				w.Write(big[:500])
			},
			want: ReasonDownloadTooSmall,
		},
		{
			name: "oversized content-length",
			url:  "/a.jpg",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "image/jpeg")
				w.Header().Set("Content-Length", strconv.Itoa(MaxImageBytes+1))
				w.WriteHeader(http.StatusOK)
			},
			want: ReasonTooLarge,
		},
		{
			name: "oversized streamed body",
			url:  "/a.jpg",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "image/jpeg")
				w.WriteHeader(http.StatusOK)
				w.(http.Flusher).Flush()
				chunk := bytes.Repeat([]byte{0xff}, 1<<20)
				for i := 0; i <= MaxImageBytes>>20; i++ {
					if _, err := w.Write(chunk); err != nil {
						return
					}
				}
			},
			want: ReasonTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			url := ""
			if tt.url != "" {
				url = srv.URL + tt.url
			}
			store := &recordingStore{}
			name, err := newTestDownloader(srv, store).Download(context.Background(), url, nil)
			if name != "" {
				t.Errorf("name = %q, want empty on rejection", name)
			}
			var de *DownloadError
			if !errors.As(err, &de) {
				t.Fatalf("err = %v, want *DownloadError", err)
			}
			if !strings.HasPrefix(de.Reason, tt.want) {
				t.Errorf("reason = %q, want prefix %q", de.Reason, tt.want)
			}
			if store.path != "" {
				t.Error("rejected image reached the store")
			}
		})
	}
}

func TestDownloadForbiddenFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestDownloader(srv, &recordingStore{}).Download(context.Background(), srv.URL+"/p.jpg", nil)
	var de *DownloadError
	if !errors.As(err, &de) || !de.Forbidden() {
		t.Fatalf("err = %v, want forbidden DownloadError", err)
	}
}

func TestDownloadNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/p.jpg"
	srv.Close()

	_, err := NewDownloader(nil, &recordingStore{}, time.Second).Download(context.Background(), url, nil)
	if err == nil || !strings.HasPrefix(err.Error(), "Failed to download image: ") {
		t.Fatalf("err = %v, want network failure reason", err)
	}
}

func TestDownloadSendsCookies(t *testing.T) {
	body := noisyPNG(t)
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("li_at"); err == nil {
			got = c.Value
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	_, err := newTestDownloader(srv, &recordingStore{}).Download(context.Background(), srv.URL+"/p.png",
		[]http.Cookie{{Name: "li_at", Value: "tok"}})
	if err != nil {
		t.Fatal(err)
	}
	if got != "tok" {
		t.Errorf("cookie = %q, want tok", got)
	}
}
