// Package discover groups users by genre taste using k-means clustering.
package discover

import (
	"context"
	"fmt"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/d-negatu/vibetune/internal/db"
)

// DefaultNumClusters is the default number of taste groups.
const DefaultNumClusters = 3

// Config holds clustering parameters.
type Config struct {
	NumClusters int
}

// Store is the profile read surface discover needs.
type Store interface {
	All(ctx context.Context) ([]db.ProfileSummary, error)
}

// Service recommends users with similar taste for the discover page.
type Service struct {
	store Store
	cfg   Config
}

// New creates a discover Service.
func New(store Store, cfg Config) *Service {
	if cfg.NumClusters <= 0 {
		cfg.NumClusters = DefaultNumClusters
	}
	return &Service{store: store, cfg: cfg}
}

// profileObservation wraps a user's genre vector to implement the
// clusters.Observation interface.
type profileObservation struct {
	userID string
	coords clusters.Coordinates
}

func (o profileObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o profileObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// SimilarUsers returns the ids of other users whose genre mix clusters with
// the given user's. When there are too few profiles to cluster, or the user
// has no genre data, it degrades to every other user with a profile.
func (s *Service) SimilarUsers(ctx context.Context, userID string) ([]string, error) {
	profiles, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading profiles: %w", err)
	}

	vocab := genreVocabulary(profiles)

	var observations []profileObservation
	userObserved := false
	for _, p := range profiles {
		if len(p.TopGenres) == 0 {
			continue
		}
		observations = append(observations, profileObservation{
			userID: p.UserID,
			coords: genreVector(p.TopGenres, vocab),
		})
		if p.UserID == userID {
			userObserved = true
		}
	}

	if !userObserved || len(observations) < s.cfg.NumClusters {
		return otherUserIDs(profiles, userID), nil
	}

	var obs clusters.Observations
	for _, o := range observations {
		obs = append(obs, o)
	}

	km := kmeans.New()
	result, err := km.Partition(obs, s.cfg.NumClusters)
	if err != nil {
		// Clustering is best effort; fall back to the unclustered list.
		return otherUserIDs(profiles, userID), nil
	}

	for _, cluster := range result {
		var members []string
		found := false
		for _, o := range cluster.Observations {
			po, ok := o.(profileObservation)
			if !ok {
				continue
			}
			if po.userID == userID {
				found = true
				continue
			}
			members = append(members, po.userID)
		}
		if found {
			slices.Sort(members)
			return members, nil
		}
	}

	return otherUserIDs(profiles, userID), nil
}

// genreVocabulary collects every distinct genre across all profiles, sorted
// so vectors have a stable dimension order.
func genreVocabulary(profiles []db.ProfileSummary) []string {
	seen := make(map[string]struct{})
	for _, p := range profiles {
		for _, g := range p.TopGenres {
			seen[g] = struct{}{}
		}
	}
	vocab := make([]string, 0, len(seen))
	for g := range seen {
		vocab = append(vocab, g)
	}
	slices.Sort(vocab)
	return vocab
}

// genreVector counts each vocabulary genre in the profile's top genres,
// normalized by the total count so prolific listeners don't dominate.
func genreVector(genres []string, vocab []string) clusters.Coordinates {
	counts := make(map[string]float64, len(genres))
	for _, g := range genres {
		counts[g]++
	}
	total := float64(len(genres))

	coords := make(clusters.Coordinates, len(vocab))
	for i, g := range vocab {
		coords[i] = counts[g] / total
	}
	return coords
}

func otherUserIDs(profiles []db.ProfileSummary, userID string) []string {
	others := []string{}
	for _, p := range profiles {
		if p.UserID != userID {
			others = append(others, p.UserID)
		}
	}
	slices.Sort(others)
	return others
}
