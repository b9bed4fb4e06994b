package resolve

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurumgallery/artgraph/model"
)

func sparqlServer(t *testing.T, handler func(query string) (int, string)) *WikidataClient {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ArtGraphTest/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		status, body := handler(r.URL.Query().Get("query"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	client, err := NewWikidataClient(server.URL, "ArtGraphTest/1.0", 5*time.Second)
	require.NoError(t, err)
	return client
}

func binding(pairs map[string]string) string {
	var parts []string
	for key, value := range pairs {
		parts = append(parts, fmt.Sprintf(`%q: {"type": "uri", "value": %q}`, key, value))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func resultsJSON(bindings ...string) string {
	return `{"results": {"bindings": [` + strings.Join(bindings, ",") + `]}}`
}

func TestNewWikidataClient(t *testing.T) {
	t.Run("empty endpoint is rejected", func(t *testing.T) {
		_, err := NewWikidataClient("", "agent", time.Second)
		assert.Error(t, err)
	})

	t.Run("empty user agent is rejected", func(t *testing.T) {
		_, err := NewWikidataClient("https://example.org/sparql", "", time.Second)
		assert.Error(t, err)
	})
}

func TestSearchEntity(t *testing.T) {
	t.Run("returns the matched entity", func(t *testing.T) {
		client := sparqlServer(t, func(query string) (int, string) {
			assert.Contains(t, query, `mwapi:search "Hans Holbein"`)
			return http.StatusOK, resultsJSON(binding(map[string]string{
				"item":      "http://www.wikidata.org/entity/Q48319",
				"itemLabel": "Hans Holbein the Younger",
			}))
		})

		match, err := client.SearchEntity(context.Background(), "Hans Holbein")
		require.NoError(t, err)
		require.NotNil(t, match)
		assert.Equal(t, "Q48319", match.ID)
		assert.Equal(t, "Hans Holbein the Younger", match.Label)
	})

	t.Run("no bindings means no match", func(t *testing.T) {
		client := sparqlServer(t, func(query string) (int, string) {
			return http.StatusOK, resultsJSON()
		})

		match, err := client.SearchEntity(context.Background(), "Unknown Painter")
		require.NoError(t, err)
		assert.Nil(t, match)
	})

	t.Run("quotes in the name are escaped", func(t *testing.T) {
		client := sparqlServer(t, func(query string) (int, string) {
			assert.Contains(t, query, `mwapi:search "Jan \"the Elder\" Brueghel"`)
			return http.StatusOK, resultsJSON()
		})

		_, err := client.SearchEntity(context.Background(), `Jan "the Elder" Brueghel`)
		require.NoError(t, err)
	})

	t.Run("server errors surface", func(t *testing.T) {
		client := sparqlServer(t, func(query string) (int, string) {
			return http.StatusTooManyRequests, "rate limited"
		})

		_, err := client.SearchEntity(context.Background(), "Hans Holbein")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})
}

func TestFetchRelations(t *testing.T) {
	t.Run("maps properties to relation types", func(t *testing.T) {
		client := sparqlServer(t, func(query string) (int, string) {
			assert.Contains(t, query, "wd:Q5598 wdt:P737")
			assert.Contains(t, query, "wd:Q5598 wdt:P1066")
			return http.StatusOK, resultsJSON(
				binding(map[string]string{
					"property": "P737",
					"target":   "http://www.wikidata.org/entity/Q183221",
					"targetLabel": "Pieter Lastman",
				}),
				binding(map[string]string{
					"property": "P1066",
					"target":   "http://www.wikidata.org/entity/Q978158",
					"targetLabel": "Jacob van Swanenburg",
				}),
			)
		})

		relations, err := client.FetchRelations(context.Background(), "Q5598")
		require.NoError(t, err)
		require.Len(t, relations, 2)

		assert.Equal(t, model.RelationInfluencedBy, relations[0].Type)
		assert.Equal(t, "Q183221", relations[0].TargetID)
		assert.Equal(t, model.RelationStudentOf, relations[1].Type)
		assert.Equal(t, "Jacob van Swanenburg", relations[1].TargetLabel)
	})

	t.Run("relations are capped per type", func(t *testing.T) {
		var bindings []string
		for i := 0; i < 8; i++ {
			bindings = append(bindings, binding(map[string]string{
				"property":    "P737",
				"target":      fmt.Sprintf("http://www.wikidata.org/entity/Q%d", i+1),
				"targetLabel": fmt.Sprintf("Influence %d", i+1),
			}))
		}
		client := sparqlServer(t, func(query string) (int, string) {
			return http.StatusOK, resultsJSON(bindings...)
		})

		relations, err := client.FetchRelations(context.Background(), "Q5598")
		require.NoError(t, err)
		assert.Len(t, relations, 5)
	})

	t.Run("stored id is sanitized before interpolation", func(t *testing.T) {
		client := sparqlServer(t, func(query string) (int, string) {
			assert.NotContains(t, query, "}")
			assert.Contains(t, query, "wd:Q42evil")
			return http.StatusOK, resultsJSON()
		})

		_, err := client.FetchRelations(context.Background(), "Q42} evil")
		require.NoError(t, err)
	})
}

func TestFetchImage(t *testing.T) {
	t.Run("returns the image url", func(t *testing.T) {
		client := sparqlServer(t, func(query string) (int, string) {
			assert.Contains(t, query, "wd:Q5598 wdt:P18")
			return http.StatusOK, resultsJSON(binding(map[string]string{
				"image": "http://commons.wikimedia.org/self-portrait.jpg",
			}))
		})

		image, err := client.FetchImage(context.Background(), "Q5598")
		require.NoError(t, err)
		assert.Equal(t, "http://commons.wikimedia.org/self-portrait.jpg", image)
	})

	t.Run("no image yields empty string", func(t *testing.T) {
		client := sparqlServer(t, func(query string) (int, string) {
			return http.StatusOK, resultsJSON()
		})

		image, err := client.FetchImage(context.Background(), "Q5598")
		require.NoError(t, err)
		assert.Equal(t, "", image)
	})
}

func TestEntityID(t *testing.T) {
	assert.Equal(t, "Q42", entityID("http://www.wikidata.org/entity/Q42"))
	assert.Equal(t, "Q42", entityID("Q42"))
	assert.Equal(t, "", entityID("http://www.wikidata.org/entity/L42"))
	assert.Equal(t, "", entityID(""))
}
