package discover

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/d-negatu/vibetune/internal/db"
)

type fakeProfileStore struct {
	profiles []db.ProfileSummary
	err      error
}

func (f *fakeProfileStore) All(_ context.Context) ([]db.ProfileSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profiles, nil
}

func profileWith(userID string, genres ...string) db.ProfileSummary {
	return db.ProfileSummary{UserID: userID, TopGenres: genres}
}

func TestSimilarUsers_TooFewProfilesFallsBack(t *testing.T) {
	store := &fakeProfileStore{profiles: []db.ProfileSummary{
		profileWith("u1", "indie rock"),
		profileWith("u2", "techno"),
	}}
	svc := New(store, Config{NumClusters: 3})

	got, err := svc.SimilarUsers(context.Background(), "u1")
	if err != nil {
		t.Fatalf("SimilarUsers() error = %v", err)
	}
	if !slices.Equal(got, []string{"u2"}) {
		t.Errorf("SimilarUsers() = %v, want [u2]", got)
	}
}

func TestSimilarUsers_UserWithoutGenresFallsBack(t *testing.T) {
	store := &fakeProfileStore{profiles: []db.ProfileSummary{
		profileWith("u1"), // has a profile but no genre data
		profileWith("u2", "techno"),
		profileWith("u3", "techno"),
		profileWith("u4", "jazz"),
	}}
	svc := New(store, Config{NumClusters: 3})

	got, err := svc.SimilarUsers(context.Background(), "u1")
	if err != nil {
		t.Fatalf("SimilarUsers() error = %v", err)
	}
	if !slices.Equal(got, []string{"u2", "u3", "u4"}) {
		t.Errorf("SimilarUsers() = %v, want all other users sorted", got)
	}
}

func TestSimilarUsers_NoProfiles(t *testing.T) {
	svc := New(&fakeProfileStore{}, Config{})

	got, err := svc.SimilarUsers(context.Background(), "u1")
	if err != nil {
		t.Fatalf("SimilarUsers() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("SimilarUsers() = %v, want empty", got)
	}
}

func TestSimilarUsers_StoreError(t *testing.T) {
	svc := New(&fakeProfileStore{err: errors.New("db down")}, Config{})

	if _, err := svc.SimilarUsers(context.Background(), "u1"); err == nil {
		t.Fatal("SimilarUsers() error = nil, want store error")
	}
}

func TestSimilarUsers_ExcludesSelf(t *testing.T) {
	store := &fakeProfileStore{profiles: []db.ProfileSummary{
		profileWith("u1", "indie rock"),
	}}
	svc := New(store, Config{NumClusters: 3})

	got, err := svc.SimilarUsers(context.Background(), "u1")
	if err != nil {
		t.Fatalf("SimilarUsers() error = %v", err)
	}
	if slices.Contains(got, "u1") {
		t.Errorf("SimilarUsers() = %v, must not contain the user itself", got)
	}
}

func TestGenreVocabulary(t *testing.T) {
	profiles := []db.ProfileSummary{
		profileWith("u1", "techno", "house", "techno"),
		profileWith("u2", "ambient", "house"),
	}

	got := genreVocabulary(profiles)
	want := []string{"ambient", "house", "techno"}
	if !slices.Equal(got, want) {
		t.Errorf("genreVocabulary() = %v, want %v", got, want)
	}
}

func TestGenreVector(t *testing.T) {
	vocab := []string{"ambient", "house", "techno"}
	got := genreVector([]string{"techno", "house", "techno", "techno"}, vocab)

	want := []float64{0, 0.25, 0.75}
	if len(got) != len(want) {
		t.Fatalf("genreVector() length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("genreVector()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
