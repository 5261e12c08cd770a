package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/filmhub/internal/models"
)

var (
	_ list.Item = movieItem{}
)

// movieItem wraps [models.Movie] to implement [list.Item]. score is the user's rating, 0 when unrated.
type movieItem struct {
	movie models.Movie
	score int
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string {
	if i.movie.Year > 0 {
		return fmt.Sprintf("%s (%d)", i.movie.Title, i.movie.Year)
	}
	return i.movie.Title
}
func (i movieItem) Description() string {
	parts := []string{}
	for _, p := range []string{i.movie.Genre, i.movie.Director} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, "★ "+i.movie.RatingLabel())
	if i.score > 0 {
		parts = append(parts, fmt.Sprintf("you: %d/10", i.score))
	}
	return strings.Join(parts, " • ")
}

func movieItems(movies []models.Movie, scoreFor func(int) int) []list.Item {
	items := make([]list.Item, len(movies))
	for i, m := range movies {
		item := movieItem{movie: m}
		if scoreFor != nil {
			item.score = scoreFor(m.ExternalID)
		}
		items[i] = item
	}
	return items
}
