// Command optimize-images re-encodes every stored face photo through the
// media pipeline (max 400px, JPEG q85) and points each person at the new
// file.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/use-agent/facecards/config"
	"github.com/use-agent/facecards/media"
	"github.com/use-agent/facecards/models"
	"github.com/use-agent/facecards/store"
)

var dataDir = flag.String("data-dir", "", "data directory (default: NAMES_AND_FACES_DATA_DIR or ~/.names-and-faces)")

type peopleStore interface {
	List(ctx context.Context, query string) ([]*models.Person, error)
	Update(ctx context.Context, p *models.Person) error
}

type summary struct {
	Optimized  int
	Skipped    int
	Failed     int
	SavedBytes int64
}

func main() {
	flag.Parse()

	cfg := config.Load()
	if *dataDir != "" {
		cfg.Storage.DataDir = *dataDir
	}

	photos, err := media.NewFileStore(cfg.Storage.MediaDir(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	db, err := store.Open(cfg.Storage.DatabasePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	sum, err := optimizeAll(context.Background(), db, photos, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nOptimized %d images (%d skipped, %d failed), saved %dKB\n",
		sum.Optimized, sum.Skipped, sum.Failed, sum.SavedBytes/1024)
}

// optimizeAll re-encodes each person's photo. Missing files are skipped and
// undecodable ones reported; neither stops the run.
func optimizeAll(ctx context.Context, people peopleStore, photos *media.FileStore, out io.Writer) (summary, error) {
	var sum summary

	all, err := people.List(ctx, "")
	if err != nil {
		return sum, err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	for _, p := range all {
		if p.FaceFilename == "" {
			continue
		}

		oldPath, err := photos.Path(p.FaceFilename)
		if err != nil {
			fmt.Fprintf(tw, "  SKIP\t%s\tinvalid filename (%s)\n", p.Name, p.FaceFilename)
			sum.Skipped++
			continue
		}
		oldInfo, err := os.Stat(oldPath)
		if err != nil {
			fmt.Fprintf(tw, "  SKIP\t%s\tfile missing (%s)\n", p.Name, p.FaceFilename)
			sum.Skipped++
			continue
		}

		newName, err := photos.OptimizeAndStore(ctx, oldPath)
		if err != nil {
			fmt.Fprintf(tw, "  FAIL\t%s\t%v\n", p.Name, err)
			sum.Failed++
			continue
		}
		newPath, _ := photos.Path(newName)
		newInfo, err := os.Stat(newPath)
		if err != nil {
			fmt.Fprintf(tw, "  FAIL\t%s\t%v\n", p.Name, err)
			sum.Failed++
			continue
		}

		oldName := p.FaceFilename
		p.FaceFilename = newName
		if err := people.Update(ctx, p); err != nil {
			// Keep the old file; the record still points at it.
			_ = photos.Remove(ctx, newName)
			fmt.Fprintf(tw, "  FAIL\t%s\t%v\n", p.Name, err)
			sum.Failed++
			continue
		}
		if oldName != newName {
			if err := photos.Remove(ctx, oldName); err != nil {
				fmt.Fprintf(tw, "  WARN\t%s\told file not removed: %v\n", p.Name, err)
			}
		}

		sum.Optimized++
		sum.SavedBytes += oldInfo.Size() - newInfo.Size()
		fmt.Fprintf(tw, "  OK\t%s\t%dKB -> %dKB\n", p.Name, oldInfo.Size()/1024, newInfo.Size()/1024)
	}
	return sum, nil
}
