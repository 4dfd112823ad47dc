package services

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/datavisiting/fdp-explorer/pkg/models"
)

// Search scoring weights, per query term.
const (
	scoreTitleMatch       = 100
	scoreTitleExact       = 50
	scoreDescriptionMatch = 10
	scoreKeywordMatch     = 5
	scoreKeywordExact     = 10
	scoreThemeLabelMatch  = 5
)

// FilterByTheme returns the datasets tagged with themeURI.
func FilterByTheme(datasets []models.Dataset, themeURI string) []models.Dataset {
	return lo.Filter(datasets, func(ds models.Dataset, _ int) bool {
		return lo.Contains(ds.Themes, themeURI)
	})
}

// FilterByKeyword returns the datasets whose title, description or any
// keyword contains keyword, case-insensitively.
func FilterByKeyword(datasets []models.Dataset, keyword string) []models.Dataset {
	kw := strings.ToLower(keyword)
	return lo.Filter(datasets, func(ds models.Dataset, _ int) bool {
		return matchesKeyword(ds, kw)
	})
}

func matchesKeyword(ds models.Dataset, kw string) bool {
	if strings.Contains(strings.ToLower(ds.Title), kw) {
		return true
	}
	if strings.Contains(strings.ToLower(ds.Description), kw) {
		return true
	}
	return anyContains(lowerAll(ds.Keywords), kw)
}

// Search ranks datasets against a free-text query. An empty query returns the
// input unchanged. Otherwise datasets that match no term are dropped and the
// rest are ordered by score, highest first, then by title.
func Search(datasets []models.Dataset, query string) []models.Dataset {
	if query == "" {
		return datasets
	}

	terms := strings.Fields(strings.ToLower(query))

	type scored struct {
		score int
		ds    models.Dataset
	}
	var results []scored
	for _, ds := range datasets {
		if score := scoreDataset(ds, terms); score > 0 {
			results = append(results, scored{score: score, ds: ds})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].ds.Title < results[j].ds.Title
	})

	out := make([]models.Dataset, len(results))
	for i, r := range results {
		out[i] = r.ds
	}
	return out
}

func scoreDataset(ds models.Dataset, terms []string) int {
	title := strings.ToLower(ds.Title)
	description := strings.ToLower(ds.Description)
	keywords := lowerAll(ds.Keywords)
	labels := lowerAll(ds.ThemeLabels)

	score := 0
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += scoreTitleMatch
			if title == term {
				score += scoreTitleExact
			}
		}
		if strings.Contains(description, term) {
			score += scoreDescriptionMatch
		}
		if anyContains(keywords, term) {
			score += scoreKeywordMatch
			if lo.Contains(keywords, term) {
				score += scoreKeywordExact
			}
		}
		if anyContains(labels, term) {
			score += scoreThemeLabelMatch
		}
	}
	return score
}

// GetAvailableThemes counts theme occurrences across datasets. A theme's label
// is taken from its first occurrence. Sorted by count, highest first, then by
// label.
func GetAvailableThemes(datasets []models.Dataset) []models.Theme {
	index := make(map[string]int)
	themes := []models.Theme{}
	for _, ds := range datasets {
		for i, uri := range ds.Themes {
			if pos, ok := index[uri]; ok {
				themes[pos].Count++
				continue
			}
			index[uri] = len(themes)
			themes = append(themes, models.Theme{URI: uri, Label: ds.ThemeLabel(i), Count: 1})
		}
	}

	sort.SliceStable(themes, func(i, j int) bool {
		if themes[i].Count != themes[j].Count {
			return themes[i].Count > themes[j].Count
		}
		return themes[i].Label < themes[j].Label
	})
	return themes
}

func lowerAll(in []string) []string {
	return lo.Map(in, func(s string, _ int) string { return strings.ToLower(s) })
}

func anyContains(list []string, term string) bool {
	return lo.ContainsBy(list, func(s string) bool { return strings.Contains(s, term) })
}
