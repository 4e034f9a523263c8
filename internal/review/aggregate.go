package review

import "github.com/Brodino96/TasteTracker/internal/domain"

// Aggregate computes the count and exact mean rating of reviews. Ratings are
// summed as integers so the result does not depend on input order.
func Aggregate(reviews []domain.Review) domain.Aggregate {
	if len(reviews) == 0 {
		return domain.Aggregate{}
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating.Int()
	}
	mean := float64(sum) / float64(len(reviews))
	return domain.Aggregate{Count: len(reviews), Mean: &mean}
}

// Dedup keeps the first review for each (dish, author) pair of a list
// ordered newest first, so only an author's latest review is shown.
func Dedup(reviews []domain.Review) []domain.Review {
	type key struct{ dish, author string }

	seen := make(map[key]struct{}, len(reviews))
	out := make([]domain.Review, 0, len(reviews))
	for _, r := range reviews {
		k := key{r.DishID, r.AuthorID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Merge returns a new list with created first, followed by current minus
// every review created's author left on the same dish. current is not
// modified.
func Merge(current []domain.Review, created domain.Review) []domain.Review {
	out := make([]domain.Review, 0, len(current)+1)
	out = append(out, created)
	for _, r := range current {
		if r.DishID == created.DishID && r.AuthorID == created.AuthorID {
			continue
		}
		out = append(out, r)
	}
	return out
}

// AggregateByDish partitions reviews by dish and aggregates each partition
// independently. Every id in dishIDs gets an entry; dishes without reviews
// get the empty aggregate. Reviews must be ordered newest first.
func AggregateByDish(dishIDs []string, reviews []domain.Review) map[string]domain.Aggregate {
	byDish := make(map[string][]domain.Review, len(dishIDs))
	for _, r := range reviews {
		byDish[r.DishID] = append(byDish[r.DishID], r)
	}

	out := make(map[string]domain.Aggregate, len(dishIDs))
	for _, id := range dishIDs {
		out[id] = Aggregate(Dedup(byDish[id]))
	}
	return out
}
