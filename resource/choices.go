// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package resource

import "strings"

// MinTermLength is the shortest autocomplete term that produces any
// choices.
const MinTermLength = 2

// Choice is one autocomplete suggestion.
type Choice struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// Choices returns the items of c whose labels contain term, ignoring
// case, in collection order.  At most limit choices are returned if
// limit is positive.  Terms shorter than MinTermLength produce no
// choices.
func Choices(c Collection, term string, limit int) ([]Choice, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if len([]rune(term)) < MinTermLength {
		return []Choice{}, nil
	}
	items, err := All(c)
	if err != nil {
		return nil, err
	}
	result := []Choice{}
	for _, item := range items {
		label := item.String()
		if !strings.Contains(strings.ToLower(label), term) {
			continue
		}
		result = append(result, Choice{Label: label, Value: item.ID()})
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}
