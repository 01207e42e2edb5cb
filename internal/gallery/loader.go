package gallery

import (
	"context"
	"fmt"
	"path/filepath"
)

// Embedder computes an embedding for an image. Lenient mode (strict=false)
// is used for all reference images: a bad image is an error the loader skips.
type Embedder interface {
	Represent(ctx context.Context, image []byte, strict bool) ([]float32, error)
}

// StudentRefs is one student's bounded reference set during a class scan.
type StudentRefs struct {
	Roll       string
	Embeddings [][]float32
}

// Source names a student and the folder holding their reference images.
type Source struct {
	Roll   string
	Folder string
}

// Loader builds reference galleries on demand. Galleries are rebuilt fresh
// per call rather than cached; the stored images are the source of truth.
type Loader struct {
	store    Store
	embedder Embedder
}

// NewLoader creates a gallery loader.
func NewLoader(store Store, embedder Embedder) *Loader {
	return &Loader{store: store, embedder: embedder}
}

// Student loads one student's reference embeddings in folder listing order.
// Images that fail to embed are skipped. limit caps the number of images
// consulted; limit <= 0 means the full folder. A missing folder yields an
// empty gallery.
func (l *Loader) Student(ctx context.Context, folder string, limit int) ([][]float32, error) {
	images, err := l.store.ListImages(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("loading gallery %s: %w", folder, err)
	}
	if limit > 0 && len(images) > limit {
		images = images[:limit]
	}

	var refs [][]float32
	for _, img := range images {
		emb, err := l.embedder.Represent(ctx, img.Data, false)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		refs = append(refs, emb)
	}
	return refs, nil
}

// Class loads the bounded reference sets for the given students, preserving
// the order of sources. Students whose gallery comes back empty are kept
// with zero embeddings so iteration order stays stable.
func (l *Loader) Class(ctx context.Context, sources []Source, perStudent int) ([]StudentRefs, error) {
	refs := make([]StudentRefs, 0, len(sources))
	for _, src := range sources {
		embs, err := l.Student(ctx, src.Folder, perStudent)
		if err != nil {
			return nil, err
		}
		refs = append(refs, StudentRefs{Roll: src.Roll, Embeddings: embs})
	}
	return refs, nil
}

// ClassFolder loads reference sets by scanning a class folder's student
// subfolders ("stu_<roll>"), the layout SaveImage produces. Used by the CLI;
// the web handlers build sources from the roster store instead.
func (l *Loader) ClassFolder(ctx context.Context, classFolder string, perStudent int) ([]StudentRefs, error) {
	folders, err := l.store.ListStudentFolders(ctx, classFolder)
	if err != nil {
		return nil, err
	}

	sources := make([]Source, 0, len(folders))
	for _, f := range folders {
		sources = append(sources, Source{
			Roll:   RollFromFolderName(f),
			Folder: filepath.Join(classFolder, f),
		})
	}
	return l.Class(ctx, sources, perStudent)
}
