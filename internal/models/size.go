package models

import (
	"fmt"
	"slices"
)

type Size string

const (
	SizeSmall   Size = "Small"
	SizeMedium  Size = "Medium"
	SizeLarge   Size = "Large"
	SizeOneSize Size = "OneSize"
)

var sizeRank = map[Size]int{
	SizeSmall:   0,
	SizeMedium:  1,
	SizeLarge:   2,
	SizeOneSize: 3,
}

func ParseSize(s string) (Size, error) {
	if sz := Size(s); sz.Valid() {
		return sz, nil
	}
	return "", fmt.Errorf("unknown size %q", s)
}

func (s Size) Valid() bool {
	_, ok := sizeRank[s]
	return ok
}

type SizeList []Size

// Normalize drops duplicates and orders sizes Small, Medium, Large, OneSize.
func (l SizeList) Normalize() (SizeList, error) {
	out := make(SizeList, 0, len(l))
	for _, s := range l {
		if !s.Valid() {
			return nil, fmt.Errorf("unknown size %q", s)
		}
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b Size) int { return sizeRank[a] - sizeRank[b] })
	return out, nil
}
