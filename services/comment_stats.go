package services

import (
	"math"

	"github.com/rpupo63/project-showcase/models"
)

// CommentSummary is a project's comments plus statistics derived from them.
// It is computed on every read and never stored.
type CommentSummary struct {
	Comments      []models.Comment `json:"comments"`
	AverageRating float64          `json:"averageRating"`
	TotalComments int              `json:"totalComments"`
	TotalRatings  int              `json:"totalRatings"`
}

// SummarizeComments orders comments newest first and computes the average
// rating (one decimal, 0 when unrated) and the comment and rating counts.
// The input slice is left untouched.
func SummarizeComments(comments []models.Comment) CommentSummary {
	ordered := make([]models.Comment, len(comments))
	copy(ordered, comments)
	models.SortCommentsNewestFirst(ordered)

	var sum, rated int
	for _, c := range ordered {
		if c.Rating == nil {
			continue
		}
		sum += *c.Rating
		rated++
	}

	var average float64
	if rated > 0 {
		average = math.Round(float64(sum)/float64(rated)*10) / 10
	}

	return CommentSummary{
		Comments:      ordered,
		AverageRating: average,
		TotalComments: len(ordered),
		TotalRatings:  rated,
	}
}
