package picketfence

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picketfence/internal/models"
	"picketfence/pkg/config"
	"picketfence/pkg/mlc"
	"picketfence/pkg/phantom"
)

// threeArrays returns arrays whose stations select Model80, Model120, Model80.
func threeArrays(t *testing.T) ([]models.ImageArray, *models.ContourStore) {
	t.Helper()
	var arrays []models.ImageArray
	var store *models.ContourStore
	for _, station := range []string{"CLINAC-1", "FVAREA2TB", "CLINAC-3"} {
		img, s := fence(t, func(o *phantom.Options) { o.StationName = station })
		arrays = append(arrays, models.ImageArray{Images: []*models.Image{img}})
		store = s
	}
	return arrays, store
}

func TestParseImageSelection(t *testing.T) {
	tests := []struct {
		in      string
		want    ImageSelection
		wantErr bool
	}{
		{"none", SelectNone, false},
		{"First", SelectFirst, false},
		{" LAST ", SelectLast, false},
		{"all", SelectAll, false},
		{"latest", SelectNone, true},
		{"", SelectNone, true},
	}
	for _, tt := range tests {
		got, err := ParseImageSelection(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, got, mustParse(t, got.String()))
	}
}

func mustParse(t *testing.T, s string) ImageSelection {
	t.Helper()
	sel, err := ParseImageSelection(s)
	require.NoError(t, err)
	return sel
}

func TestImageSelectionIndices(t *testing.T) {
	assert.Nil(t, SelectNone.Indices(3))
	assert.Equal(t, []int{0}, SelectFirst.Indices(3))
	assert.Equal(t, []int{2}, SelectLast.Indices(3))
	assert.Equal(t, []int{0, 1, 2}, SelectAll.Indices(3))
	assert.Nil(t, SelectAll.Indices(0))
}

func TestRunSelections(t *testing.T) {
	tests := []struct {
		which  ImageSelection
		arrays []int
		models []mlc.Model
	}{
		{SelectFirst, []int{0}, []mlc.Model{mlc.Model80}},
		{SelectLast, []int{2}, []mlc.Model{mlc.Model80}},
		{SelectAll, []int{0, 1, 2}, []mlc.Model{mlc.Model80, mlc.Model120, mlc.Model80}},
	}
	for _, tt := range tests {
		t.Run(tt.which.String(), func(t *testing.T) {
			arrays, store := threeArrays(t)
			a := newTestAnalyzer(t, func(c *config.Config) { c.Processing.Workers = 1 })

			results, err := a.Run(context.Background(), arrays, store, a.Select(store), tt.which)
			require.NoError(t, err)
			require.Len(t, results, len(tt.arrays))

			seen := map[string]bool{}
			for i, res := range results {
				assert.Equal(t, tt.arrays[i], res.ArrayIndex)
				require.NoError(t, res.Err)
				assert.Equal(t, tt.models[i], res.Report.Model)

				_, err := uuid.Parse(res.RunID)
				assert.NoError(t, err)
				assert.False(t, seen[res.RunID], "duplicate run id")
				seen[res.RunID] = true
			}

			// Two overlay collections per analysed image, appended in order.
			require.Len(t, store.Collections, 4+2*len(tt.arrays))
			for i := range tt.arrays {
				assert.Equal(t, JunctionOverlayName, store.Collections[4+2*i].Name)
				assert.Equal(t, LeafOverlayName, store.Collections[5+2*i].Name)
			}
		})
	}
}

func TestRunConcurrentMatchesSequential(t *testing.T) {
	arrays, seqStore := threeArrays(t)
	seq := newTestAnalyzer(t, func(c *config.Config) { c.Processing.Workers = 1 })
	seqResults, err := seq.Run(context.Background(), arrays, seqStore, seq.Select(seqStore), SelectAll)
	require.NoError(t, err)

	arrays, parStore := threeArrays(t)
	par := newTestAnalyzer(t, func(c *config.Config) { c.Processing.Workers = 3 })
	parResults, err := par.Run(context.Background(), arrays, parStore, par.Select(parStore), SelectAll)
	require.NoError(t, err)

	require.Len(t, parResults, len(seqResults))
	for i := range seqResults {
		if diff := cmp.Diff(seqResults[i].Report, parResults[i].Report, reportOpts); diff != "" {
			t.Errorf("Report %d differs (-sequential +concurrent):\n%s", i, diff)
		}
	}
	if diff := cmp.Diff(seqStore, parStore); diff != "" {
		t.Errorf("Stores differ (-sequential +concurrent):\n%s", diff)
	}
}

func TestRunEmptyImageSet(t *testing.T) {
	_, store := fence(t, nil)
	a := newTestAnalyzer(t, nil)

	_, err := a.Run(context.Background(), nil, store, a.Select(store), SelectAll)
	assert.ErrorIs(t, err, ErrEmptyImageSet)

	results, err := a.Run(context.Background(), nil, store, a.Select(store), SelectNone)
	assert.NoError(t, err)
	assert.Empty(t, results)

	img, _ := fence(t, nil)
	arrays := []models.ImageArray{{}, {Images: []*models.Image{img}}}
	results, err = a.Run(context.Background(), arrays, store, a.Select(store), SelectAll)
	assert.ErrorIs(t, err, ErrEmptyImageSet)
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, ErrEmptyImageSet)
	assert.NoError(t, results[1].Err)
	assert.Len(t, store.Collections, 6, "successful images still contribute overlays")
}

func TestRunInsufficientJunctions(t *testing.T) {
	img, store := fence(t, func(o *phantom.Options) {
		o.Junctions = []float64{10}
		o.SplitJunctions = false
	})
	a := newTestAnalyzer(t, nil)
	arrays := []models.ImageArray{{Images: []*models.Image{img}}}
	_, err := a.Run(context.Background(), arrays, store, a.Select(store), SelectAll)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestRunCancelled(t *testing.T) {
	arrays, store := threeArrays(t)
	a := newTestAnalyzer(t, func(c *config.Config) { c.Processing.Workers = 2 })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := a.Run(ctx, arrays, store, a.Select(store), SelectAll)
	assert.ErrorIs(t, err, context.Canceled)
	for _, res := range results {
		assert.ErrorIs(t, res.Err, context.Canceled)
		assert.Nil(t, res.Report)
	}
	assert.Len(t, store.Collections, 4)
}
