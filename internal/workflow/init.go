package workflow

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/image"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/saldo/internal/documents"

	"golang.org/x/sync/errgroup"
)

const (
	sourcePDF = "source.pdf"
	sourcePNG = "page-1.png"
)

// InitNode returns a state node that downloads the scan from blob storage
// and renders every page to a PNG image in the temp directory. PNG uploads
// are used as a single page without rendering.
func InitNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		documentID, err := stateValue[uuid.UUID](s, KeyDocumentID)
		if err != nil {
			return s, fmt.Errorf("init: %w", err)
		}
		tempDir, err := stateValue[string](s, KeyTempDir)
		if err != nil {
			return s, fmt.Errorf("init: %w", err)
		}

		doc, err := rt.Documents.Find(ctx, documentID)
		if err != nil {
			return s, fmt.Errorf("init: %w: %w", ErrDocumentNotFound, err)
		}

		var pages []Page
		switch doc.ContentType {
		case documents.ContentTypePNG:
			path := filepath.Join(tempDir, sourcePNG)
			if err := download(ctx, rt, doc, path); err != nil {
				return s, fmt.Errorf("init: %w", err)
			}
			pages = []Page{{Number: 1, ImagePath: path}}
		default:
			path := filepath.Join(tempDir, sourcePDF)
			if err := download(ctx, rt, doc, path); err != nil {
				return s, fmt.Errorf("init: %w", err)
			}
			pages, err = renderPages(ctx, path, tempDir)
			if err != nil {
				return s, fmt.Errorf("init: %w", err)
			}
		}

		if len(pages) == 0 {
			return s, fmt.Errorf("init: %w", ErrNoPages)
		}

		rt.Logger.InfoContext(
			ctx, "init node complete",
			"document_id", documentID,
			"page_count", len(pages),
		)

		s = s.Set(KeyPages, pages)
		s = s.Set(KeyFilename, doc.Filename)
		return s, nil
	})
}

func download(ctx context.Context, rt *Runtime, doc *documents.Document, path string) error {
	blob, err := rt.Storage.Download(ctx, doc.StorageKey)
	if err != nil {
		return fmt.Errorf("%w: download blob: %w", ErrRenderFailed, err)
	}
	defer blob.Body.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrRenderFailed, err)
	}

	if _, err := io.Copy(f, blob.Body); err != nil {
		f.Close()
		return fmt.Errorf("%w: write temp file: %w", ErrRenderFailed, err)
	}
	return f.Close()
}

func renderPages(ctx context.Context, pdfPath, tempDir string) ([]Page, error) {
	pdfDoc, err := document.OpenPDF(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %w", ErrRenderFailed, err)
	}
	defer pdfDoc.Close()

	renderer, err := image.NewImageMagickRenderer(config.DefaultImageConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: create renderer: %w", ErrRenderFailed, err)
	}

	allPages, err := pdfDoc.ExtractAllPages()
	if err != nil {
		return nil, fmt.Errorf("%w: extract pages: %w", ErrRenderFailed, err)
	}

	pages := make([]Page, len(allPages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(min(runtime.NumCPU(), len(allPages)), 1))

	for i, page := range allPages {
		num := i + 1
		imgPath := filepath.Join(tempDir, fmt.Sprintf("page-%d.png", num))
		pages[i] = Page{Number: num, ImagePath: imgPath}

		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			data, err := page.ToImage(renderer, nil)
			if err != nil {
				return fmt.Errorf("render page %d: %w", num, err)
			}

			return os.WriteFile(imgPath, data, 0600)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	return pages, nil
}

func stateValue[T any](s state.State, key string) (T, error) {
	var zero T

	val, ok := s.Get(key)
	if !ok {
		return zero, fmt.Errorf("%w: missing %s", ErrInvalidState, key)
	}

	v, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T", ErrInvalidState, key, val)
	}
	return v, nil
}
