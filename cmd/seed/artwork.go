package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KristianLengyel/menami-bot/menami/services"
)

const uploadConcurrency = 4

var artworkCmd = &cobra.Command{
	Use:   "artwork <dir>",
	Short: "upload <dir>/<series>/<character>/<edition>.png artwork to Spaces",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.Spaces.Enabled() {
			return fmt.Errorf("spaces is not configured")
		}
		s := cfg.Spaces
		spaces, err := services.NewSpacesService(s.Key, s.Secret, s.Region, s.Bucket, s.CardRoot, s.Endpoint)
		if err != nil {
			return err
		}

		fsys := os.DirFS(args[0])
		files, err := collectArtwork(fsys, spaces.GetCardRoot())
		if err != nil {
			return err
		}
		if err := uploadArtwork(ctx, fsys, spaces, files); err != nil {
			return err
		}
		slog.Info("Artwork uploaded", slog.String("type", "sys"), slog.Int("files", len(files)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(artworkCmd)
}

type artworkFile struct {
	Path string
	Key  string
}

// collectArtwork finds <series>/<character>/<edition>.png files.
// Anything else in the tree is ignored.
func collectArtwork(fsys fs.FS, root string) ([]artworkFile, error) {
	var files []artworkFile
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		parts := strings.Split(p, "/")
		if len(parts) != 3 {
			return nil
		}
		if path.Ext(parts[2]) != ".png" {
			return nil
		}
		edition, err := strconv.Atoi(strings.TrimSuffix(parts[2], ".png"))
		if err != nil || edition < 1 {
			return nil
		}
		files = append(files, artworkFile{
			Path: p,
			Key:  services.ArtworkKey(root, parts[0], parts[1], edition),
		})
		return nil
	})
	return files, err
}

type artworkUploader interface {
	PutArtwork(ctx context.Context, key string, data []byte, contentType string) error
}

func uploadArtwork(ctx context.Context, fsys fs.FS, up artworkUploader, files []artworkFile) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for _, f := range files {
		g.Go(func() error {
			data, err := fs.ReadFile(fsys, f.Path)
			if err != nil {
				return err
			}
			if err := up.PutArtwork(ctx, f.Key, data, "image/png"); err != nil {
				return err
			}
			slog.Debug("Uploaded artwork", slog.String("type", "sys"), slog.String("key", f.Key))
			return nil
		})
	}
	return g.Wait()
}
