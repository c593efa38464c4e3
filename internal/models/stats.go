package models

import "strconv"

// Stats holds engagement counters. A nil counter is unknown, not zero.
type Stats struct {
	Views     *int64 `json:"views"`
	Likes     *int64 `json:"likes"`
	Dislikes  *int64 `json:"dislikes"`
	Favorites *int64 `json:"favorites"`
	Comments  *int64 `json:"comments,omitempty"`
}

// Clone returns a copy of s with its own counters.
func (s Stats) Clone() Stats {
	return Stats{
		Views:     cloneCount(s.Views),
		Likes:     cloneCount(s.Likes),
		Dislikes:  cloneCount(s.Dislikes),
		Favorites: cloneCount(s.Favorites),
		Comments:  cloneCount(s.Comments),
	}
}

func cloneCount(n *int64) *int64 {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}

// FormatCount renders a counter for tabular output, empty when unknown.
func FormatCount(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}

// ParseCount parses a tabular counter cell, returning nil for an empty cell.
func ParseCount(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
