package resolve

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurumgallery/artgraph/model"
)

type fakeEntityAPI struct {
	entities  map[string]WikidataMatch
	relations map[string][]Relation
	images    map[string]string
	searchErr error

	searched []string
}

func (a *fakeEntityAPI) SearchEntity(ctx context.Context, name string) (*WikidataMatch, error) {
	a.searched = append(a.searched, name)
	if a.searchErr != nil {
		return nil, a.searchErr
	}
	if match, ok := a.entities[name]; ok {
		return &match, nil
	}
	return nil, nil
}

func (a *fakeEntityAPI) FetchRelations(ctx context.Context, wikidataID string) ([]Relation, error) {
	return a.relations[wikidataID], nil
}

func (a *fakeEntityAPI) FetchImage(ctx context.Context, wikidataID string) (string, error) {
	return a.images[wikidataID], nil
}

type storedArtist struct {
	wikidataID string
	label      string
	image      string
	synced     bool
}

type fakeResolverStore struct {
	artists   map[string]*storedArtist
	stubs     []string
	relations []string
	selectErr error
	matchErr  error
}

func newFakeResolverStore(names ...string) *fakeResolverStore {
	store := &fakeResolverStore{artists: map[string]*storedArtist{}}
	for _, name := range names {
		store.artists[name] = &storedArtist{}
	}
	return store
}

func (s *fakeResolverStore) SelectArtistsNeedingSync(ctx context.Context, limit int) ([]model.Artist, error) {
	if s.selectErr != nil {
		return nil, s.selectErr
	}
	var pending []model.Artist
	for name, a := range s.artists {
		if a.wikidataID == model.WikidataNotFound {
			continue
		}
		if a.wikidataID != "" && a.synced {
			continue
		}
		pending = append(pending, model.Artist{
			Name:       name,
			WikidataID: a.wikidataID,
			Image:      a.image,
		})
		if len(pending) == limit {
			break
		}
	}
	return pending, nil
}

func (s *fakeResolverStore) SetWikidataMatch(ctx context.Context, name, wikidataID, label string) error {
	if s.matchErr != nil {
		return s.matchErr
	}
	s.artists[name].wikidataID = wikidataID
	s.artists[name].label = label
	return nil
}

func (s *fakeResolverStore) SetWikidataNotFound(ctx context.Context, name string) error {
	s.artists[name].wikidataID = model.WikidataNotFound
	return nil
}

func (s *fakeResolverStore) SetImage(ctx context.Context, name, url string) error {
	if s.artists[name].image == "" {
		s.artists[name].image = url
	}
	return nil
}

func (s *fakeResolverStore) MarkSynced(ctx context.Context, name string) error {
	s.artists[name].synced = true
	return nil
}

func (s *fakeResolverStore) EnsureStubArtist(ctx context.Context, wikidataID, label, mergeName string) error {
	s.stubs = append(s.stubs, wikidataID)
	if _, ok := s.artists[mergeName]; !ok {
		s.artists[mergeName] = &storedArtist{wikidataID: wikidataID, label: label}
	}
	return nil
}

func (s *fakeResolverStore) MergeRelation(ctx context.Context, sourceWikidataID, targetWikidataID string, rel model.RelationType) error {
	s.relations = append(s.relations, sourceWikidataID+"-"+string(rel)+"->"+targetWikidataID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newResolver(t *testing.T, store ResolverStore, api EntityAPI) *Resolver {
	t.Helper()
	resolver, err := NewResolver(store, api, NewLimiter(0), 10, testLogger())
	require.NoError(t, err)
	return resolver
}

func TestResolverRun(t *testing.T) {
	t.Run("resolves an artist with relations and image", func(t *testing.T) {
		store := newFakeResolverStore("Rembrandt")
		api := &fakeEntityAPI{
			entities: map[string]WikidataMatch{
				"Rembrandt": {ID: "Q5598", Label: "Rembrandt"},
			},
			relations: map[string][]Relation{
				"Q5598": {
					{Type: model.RelationInfluencedBy, TargetID: "Q183221", TargetLabel: "Pieter Lastman"},
					{Type: model.RelationStudentOf, TargetID: "Q978158", TargetLabel: "Jacob van Swanenburg"},
				},
			},
			images: map[string]string{"Q5598": "http://img/rembrandt.jpg"},
		}

		stats, err := newResolver(t, store, api).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Failed)

		rembrandt := store.artists["Rembrandt"]
		assert.Equal(t, "Q5598", rembrandt.wikidataID)
		assert.Equal(t, "http://img/rembrandt.jpg", rembrandt.image)
		assert.True(t, rembrandt.synced)

		assert.ElementsMatch(t, []string{"Q183221", "Q978158"}, store.stubs)
		assert.Contains(t, store.relations, "Q5598-INFLUENCED_BY->Q183221")
		assert.Contains(t, store.relations, "Q5598-STUDENT_OF->Q978158")

		// Stubs become synthetic unsynced artists; later batches pick them
		// up and, since they carry ids already, only fetch their relations
		// before marking them synced.
		lastman, ok := store.artists["Pieter Lastman"]
		require.True(t, ok)
		assert.Equal(t, "Q183221", lastman.wikidataID)
		assert.Equal(t, 3, stats.Resolved)
	})

	t.Run("first matching name variant wins", func(t *testing.T) {
		store := newFakeResolverStore("Vincent Gogh")
		api := &fakeEntityAPI{
			entities: map[string]WikidataMatch{
				"Gogh, Vincent": {ID: "Q5582", Label: "Vincent van Gogh"},
			},
		}

		stats, err := newResolver(t, store, api).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Resolved)
		assert.Equal(t, "Q5582", store.artists["Vincent Gogh"].wikidataID)

		// The plain and reversed forms missed, the catalogue form hit.
		assert.Equal(t, []string{"Vincent Gogh", "Gogh Vincent", "Gogh, Vincent"}, api.searched)
	})

	t.Run("exhausted variants store the sentinel", func(t *testing.T) {
		store := newFakeResolverStore("Unknown Master")
		api := &fakeEntityAPI{}

		stats, err := newResolver(t, store, api).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, stats.NotFound)
		assert.Equal(t, model.WikidataNotFound, store.artists["Unknown Master"].wikidataID)
		assert.False(t, store.artists["Unknown Master"].synced)
	})

	t.Run("one failing artist does not abort the run", func(t *testing.T) {
		store := newFakeResolverStore("Rembrandt", "Vermeer")
		store.matchErr = nil
		api := &fakeEntityAPI{
			entities: map[string]WikidataMatch{
				"Rembrandt": {ID: "Q5598", Label: "Rembrandt"},
				"Vermeer":   {ID: "Q41264", Label: "Johannes Vermeer"},
			},
		}
		failing := &failOnceStore{fakeResolverStore: store, failFor: "Rembrandt"}

		stats, err := newResolver(t, failing, api).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Failed)
		assert.Equal(t, 1, stats.Resolved)
		assert.True(t, store.artists["Vermeer"].synced)
	})

	t.Run("already resolved artist skips the lookup", func(t *testing.T) {
		store := newFakeResolverStore("Rembrandt")
		store.artists["Rembrandt"].wikidataID = "Q5598"
		api := &fakeEntityAPI{
			images: map[string]string{"Q5598": "http://img/r.jpg"},
		}

		stats, err := newResolver(t, store, api).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Resolved)
		assert.Empty(t, api.searched)
		assert.Equal(t, "http://img/r.jpg", store.artists["Rembrandt"].image)
	})

	t.Run("existing image is not fetched again", func(t *testing.T) {
		store := newFakeResolverStore("Rembrandt")
		store.artists["Rembrandt"].wikidataID = "Q5598"
		store.artists["Rembrandt"].image = "http://img/existing.jpg"
		api := &fakeEntityAPI{
			images: map[string]string{"Q5598": "http://img/new.jpg"},
		}

		_, err := newResolver(t, store, api).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "http://img/existing.jpg", store.artists["Rembrandt"].image)
	})

	t.Run("store selection errors abort the run", func(t *testing.T) {
		store := newFakeResolverStore()
		store.selectErr = errors.New("store down")

		_, err := newResolver(t, store, &fakeEntityAPI{}).Run(context.Background())
		assert.Error(t, err)
	})

	t.Run("empty store terminates immediately", func(t *testing.T) {
		stats, err := newResolver(t, newFakeResolverStore(), &fakeEntityAPI{}).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Processed)
	})
}

// failOnceStore makes resolution fail for one artist while the rest of the
// store behaves normally.
type failOnceStore struct {
	*fakeResolverStore
	failFor string
}

func (s *failOnceStore) SetWikidataMatch(ctx context.Context, name, wikidataID, label string) error {
	if name == s.failFor {
		return errors.New("write failed")
	}
	return s.fakeResolverStore.SetWikidataMatch(ctx, name, wikidataID, label)
}
