package picketfence

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"picketfence/internal/models"
	"picketfence/pkg/orientation"
)

// ImageResult is the outcome of analysing the first image of one array.
type ImageResult struct {
	// RunID identifies this analysis in logs and reports
	RunID string

	// ArrayIndex is the position of the analysed array in the input
	ArrayIndex int

	Report *Report
	Err    error
}

// Run analyses the first image of every array chosen by which. Each image
// draws its overlays into a private store; after all images finish the
// overlays of successful images are merged into store in array order.
//
// Images are analysed concurrently when the configuration allows more than
// one worker. Cancelling ctx stops further images from starting; those are
// reported with the context error. The returned error joins every per-image
// failure, or is ErrEmptyImageSet when the selection is empty.
func (a *Analyzer) Run(ctx context.Context, arrays []models.ImageArray, store *models.ContourStore, sel models.Selection, which ImageSelection) ([]ImageResult, error) {
	if which == SelectNone {
		return nil, nil
	}
	indices := which.Indices(len(arrays))
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: %s of %d image arrays", ErrEmptyImageSet, which, len(arrays))
	}
	if len(sel) < orientation.MinContours {
		return nil, fmt.Errorf("%w: %d junction contours selected, need at least %d",
			ErrInsufficientData, len(sel), orientation.MinContours)
	}

	contours := sel.Resolve(store)
	results := make([]ImageResult, len(indices))
	for i, idx := range indices {
		results[i] = ImageResult{RunID: uuid.NewString(), ArrayIndex: idx}
	}

	analyse := func(i int) {
		res := &results[i]
		imgs := arrays[res.ArrayIndex].Images
		if len(imgs) == 0 || imgs[0] == nil {
			res.Err = fmt.Errorf("array %d: %w", res.ArrayIndex, ErrEmptyImageSet)
			return
		}
		Tracef("run %s: analysing array %d", res.RunID, res.ArrayIndex)
		rep, err := a.analyze(imgs[0], contours)
		if err != nil {
			res.Err = fmt.Errorf("array %d: %w", res.ArrayIndex, err)
			return
		}
		res.Report = rep
	}

	workers := a.cfg.Processing.Workers
	if workers > len(indices) {
		workers = len(indices)
	}
	if workers <= 1 {
		for i := range results {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				continue
			}
			analyse(i)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, workers)
		for i := range results {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				continue
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				analyse(i)
			}(i)
		}
		wg.Wait()
	}

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			Opsf("run %s: %v", res.RunID, res.Err)
			errs = append(errs, res.Err)
			continue
		}
		store.Merge(res.Report.Overlays)
	}
	return results, errors.Join(errs...)
}
