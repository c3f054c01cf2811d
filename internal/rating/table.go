// internal/rating/table.go
package rating

// Table rates a fixed set of seats across many games.
type Table struct {
	Ratings []Rating
}

// NewTable starts every seat at the default rating.
func NewTable(seats int) *Table {
	t := &Table{Ratings: make([]Rating, seats)}
	for i := range t.Ratings {
		t.Ratings[i] = Default()
	}
	return t
}

// PlacementScores turns a finishing order (first out first) into scores: 1 for the first seat
// out, 0 for the last. Seats missing from order share the bottom score.
func PlacementScores(order []int, seats int) []float64 {
	scores := make([]float64, seats)
	if seats < 2 {
		return scores
	}
	for place, seat := range order {
		if seat >= 0 && seat < seats {
			scores[seat] = 1.0 - float64(place)/float64(seats-1)
		}
	}
	return scores
}

// RecordGame updates every seat against the average of the others.
func (t *Table) RecordGame(order []int) {
	n := len(t.Ratings)
	if n < 2 {
		return
	}
	scores := PlacementScores(order, n)

	var total float64
	for _, r := range t.Ratings {
		total += r.Elo()
	}
	updated := make([]Rating, n)
	for i, r := range t.Ratings {
		oppElo := (total - r.Elo()) / float64(n-1)
		updated[i] = Update(r, New(oppElo, BaseRD, BaseSigma), scores[i])
	}
	t.Ratings = updated
}
