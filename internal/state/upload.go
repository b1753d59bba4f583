package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"mnemoniq/internal/apiclient"
)

const uploadConcurrency = 4

// checkUpload runs the client-side preflight for one file. PDFs must open
// as PDFs: a corrupt file would only fail server-side minutes later, after
// the project has already been flipped to processing.
func checkUpload(path string, exts []string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &ValidationError{Msg: fmt.Sprintf("cannot read %s: %v", filepath.Base(path), err)}
	}
	if info.IsDir() {
		return &ValidationError{Msg: fmt.Sprintf("%s is a directory", filepath.Base(path))}
	}
	if info.Size() == 0 {
		return &ValidationError{Msg: fmt.Sprintf("%s is empty", filepath.Base(path))}
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !extAllowed(ext, exts) {
		return &ValidationError{Msg: fmt.Sprintf("%s: %s files are not supported", filepath.Base(path), ext)}
	}
	if ext == ".pdf" {
		f, _, err := pdf.Open(path)
		if err != nil {
			return &ValidationError{Msg: fmt.Sprintf("%s is not a readable PDF: %v", filepath.Base(path), err)}
		}
		_ = f.Close()
	}
	return nil
}

func extAllowed(ext string, exts []string) bool {
	for _, allowed := range exts {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}

// uploadAll fans the uploads out and waits for every one of them; a failed
// sibling never cancels the others. Failures come back as a *PartialError.
func uploadAll(ctx context.Context, api *apiclient.Client, projectID string, paths []string) error {
	var (
		mu     sync.Mutex
		failed []string
		errs   []error
	)
	var g errgroup.Group
	g.SetLimit(uploadConcurrency)
	for _, path := range paths {
		g.Go(func() error {
			if err := uploadOne(ctx, api, projectID, path); err != nil {
				mu.Lock()
				failed = append(failed, filepath.Base(path))
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	if len(failed) > 0 {
		return &PartialError{Op: "upload", Failed: failed, Errs: errs}
	}
	return nil
}

func uploadOne(ctx context.Context, api *apiclient.Client, projectID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return api.Upload(ctx, projectID, filepath.Base(path), f)
}
