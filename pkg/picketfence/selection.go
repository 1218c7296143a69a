package picketfence

import (
	"fmt"
	"strings"
)

// ImageSelection chooses which image arrays a batch run analyses.
type ImageSelection int

const (
	SelectNone ImageSelection = iota
	SelectFirst
	SelectLast
	SelectAll
)

var selectionNames = map[string]ImageSelection{
	"none":  SelectNone,
	"first": SelectFirst,
	"last":  SelectLast,
	"all":   SelectAll,
}

// ParseImageSelection accepts exactly none, first, last or all, ignoring case.
func ParseImageSelection(s string) (ImageSelection, error) {
	sel, ok := selectionNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return SelectNone, fmt.Errorf("invalid image selection %q: want none, first, last or all", s)
	}
	return sel, nil
}

func (s ImageSelection) String() string {
	switch s {
	case SelectNone:
		return "none"
	case SelectFirst:
		return "first"
	case SelectLast:
		return "last"
	case SelectAll:
		return "all"
	}
	return fmt.Sprintf("ImageSelection(%d)", int(s))
}

// Indices returns the positions of the selected arrays among n.
func (s ImageSelection) Indices(n int) []int {
	if n == 0 {
		return nil
	}
	switch s {
	case SelectFirst:
		return []int{0}
	case SelectLast:
		return []int{n - 1}
	case SelectAll:
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	return nil
}
