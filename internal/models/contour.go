// Package models holds the caller-owned data the analysis reads and appends to:
// images, contours and read-only selections over them.
package models

import (
	"picketfence/pkg/geometry"
)

// ContourSet is one closed polygon with its ROI metadata. A single physical
// junction may be split over several ContourSets.
type ContourSet struct {
	Points   []geometry.Vec
	Metadata map[string]string
}

// ROIName returns the ROIName metadata, or "" when absent.
func (c ContourSet) ROIName() string {
	return c.Metadata[KeyROIName]
}

// NormalizedROIName returns the NormalizedROIName metadata, or "" when absent.
func (c ContourSet) NormalizedROIName() string {
	return c.Metadata[KeyNormalizedROIName]
}

// Centroid returns the polygon's area centroid.
func (c ContourSet) Centroid() (geometry.Vec, error) {
	return geometry.Centroid(c.Points)
}

// ContourCollection is a named group of contours, typically one ROI.
type ContourCollection struct {
	Name     string
	Contours []ContourSet
}

// ContourStore owns every contour collection. The analysis never mutates
// existing collections; overlays are appended as new ones.
type ContourStore struct {
	Collections []ContourCollection
}

// Append adds a collection and returns its index.
func (s *ContourStore) Append(cc ContourCollection) int {
	s.Collections = append(s.Collections, cc)
	return len(s.Collections) - 1
}

// Merge appends all collections of other, preserving order.
func (s *ContourStore) Merge(other *ContourStore) {
	if other == nil {
		return
	}
	s.Collections = append(s.Collections, other.Collections...)
}

// Count returns the total number of contours in the store.
func (s *ContourStore) Count() int {
	n := 0
	for _, cc := range s.Collections {
		n += len(cc.Contours)
	}
	return n
}

// ContourRef addresses one contour inside a ContourStore.
type ContourRef struct {
	Collection int
	Index      int
}

// Selection is an ordered, read-only view of contours in a store.
type Selection []ContourRef

// SelectAll selects every contour in store order.
func SelectAll(s *ContourStore) Selection {
	return SelectWhere(s, func(ContourSet) bool { return true })
}

// SelectWhere selects contours for which keep returns true, in store order.
func SelectWhere(s *ContourStore, keep func(ContourSet) bool) Selection {
	var sel Selection
	for i, cc := range s.Collections {
		for j, c := range cc.Contours {
			if keep(c) {
				sel = append(sel, ContourRef{Collection: i, Index: j})
			}
		}
	}
	return sel
}

// SelectROINames keeps contours whose ROIName is one of names and whose
// NormalizedROIName is one of normalized. An empty list does not filter.
func SelectROINames(s *ContourStore, names, normalized []string) Selection {
	want, wantNorm := nameSet(names), nameSet(normalized)
	return SelectWhere(s, func(c ContourSet) bool {
		return (want == nil || want[c.ROIName()]) && (wantNorm == nil || wantNorm[c.NormalizedROIName()])
	})
}

func nameSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// Resolve returns the selected contours. The returned values share point
// slices with the store and must be treated as read-only.
func (sel Selection) Resolve(s *ContourStore) []ContourSet {
	out := make([]ContourSet, 0, len(sel))
	for _, ref := range sel {
		out = append(out, s.Collections[ref.Collection].Contours[ref.Index])
	}
	return out
}
