package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aurumgallery/artgraph/helper"
	"github.com/aurumgallery/artgraph/model"
)

// defaultRelationLimit caps how many influence or teacher edges are taken
// per property; beyond that the graph gets noisy without getting better.
const defaultRelationLimit = 5

// WikidataMatch is one resolved entity from the external knowledge base.
type WikidataMatch struct {
	ID    string
	Label string
}

// Relation is one typed edge discovered for a resolved artist.
type Relation struct {
	Type        model.RelationType
	TargetID    string
	TargetLabel string
}

// WikidataClient runs SPARQL queries against the public query service.
type WikidataClient struct {
	endpoint      string
	userAgent     string
	relationLimit int
	http          *http.Client
}

// NewWikidataClient creates a client for the given SPARQL endpoint. The
// user agent is mandatory; the query service rejects anonymous clients.
func NewWikidataClient(endpoint, userAgent string, timeout time.Duration) (*WikidataClient, error) {
	if endpoint == "" {
		return nil, helper.NewError("wikidata client validation", fmt.Errorf("endpoint is empty"))
	}
	if userAgent == "" {
		return nil, helper.NewError("wikidata client validation", fmt.Errorf("user agent is empty"))
	}

	return &WikidataClient{
		endpoint:      endpoint,
		userAgent:     userAgent,
		relationLimit: defaultRelationLimit,
		http:          &http.Client{Timeout: timeout},
	}, nil
}

// SetRelationLimit overrides the per-property relation cap. Non-positive
// values keep the default.
func (c *WikidataClient) SetRelationLimit(limit int) {
	if limit > 0 {
		c.relationLimit = limit
	}
}

// SearchEntity looks up one human entity by name, preferring the candidate
// with the most statements. Returns nil when nothing matches.
func (c *WikidataClient) SearchEntity(ctx context.Context, name string) (*WikidataMatch, error) {
	query := fmt.Sprintf(`
		SELECT ?item ?itemLabel ?statements WHERE {
		  SERVICE wikibase:mwapi {
		    bd:serviceParam wikibase:endpoint "www.wikidata.org";
		                    wikibase:api "EntitySearch";
		                    mwapi:search %s;
		                    mwapi:language "en".
		    ?item wikibase:apiOutputItem mwapi:item.
		  }
		  ?item wdt:P31 wd:Q5.
		  ?item wikibase:statements ?statements.
		  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
		}
		ORDER BY DESC(?statements)
		LIMIT 1
	`, sparqlString(name))

	bindings, err := c.run(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(bindings) == 0 {
		return nil, nil
	}

	id := entityID(bindings[0]["item"])
	if id == "" {
		return nil, nil
	}
	return &WikidataMatch{ID: id, Label: bindings[0]["itemLabel"]}, nil
}

// FetchRelations loads the influence and teacher edges of one entity,
// capped per relation type.
func (c *WikidataClient) FetchRelations(ctx context.Context, wikidataID string) ([]Relation, error) {
	query := fmt.Sprintf(`
		SELECT ?property ?target ?targetLabel WHERE {
		  {
		    wd:%s wdt:P737 ?target.
		    BIND("P737" AS ?property)
		  }
		  UNION
		  {
		    wd:%s wdt:P1066 ?target.
		    BIND("P1066" AS ?property)
		  }
		  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
		}
	`, sparqlID(wikidataID), sparqlID(wikidataID))

	bindings, err := c.run(ctx, query)
	if err != nil {
		return nil, err
	}

	counts := map[model.RelationType]int{}
	var relations []Relation
	for _, binding := range bindings {
		var relType model.RelationType
		switch binding["property"] {
		case "P737":
			relType = model.RelationInfluencedBy
		case "P1066":
			relType = model.RelationStudentOf
		default:
			continue
		}
		if counts[relType] >= c.relationLimit {
			continue
		}

		targetID := entityID(binding["target"])
		if targetID == "" {
			continue
		}
		counts[relType]++
		relations = append(relations, Relation{
			Type:        relType,
			TargetID:    targetID,
			TargetLabel: binding["targetLabel"],
		})
	}

	return relations, nil
}

// FetchImage loads one representative image URL of an entity, or the empty
// string when none is set.
func (c *WikidataClient) FetchImage(ctx context.Context, wikidataID string) (string, error) {
	query := fmt.Sprintf(`
		SELECT ?image WHERE {
		  wd:%s wdt:P18 ?image.
		}
		LIMIT 1
	`, sparqlID(wikidataID))

	bindings, err := c.run(ctx, query)
	if err != nil {
		return "", err
	}
	if len(bindings) == 0 {
		return "", nil
	}
	return bindings[0]["image"], nil
}

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// run executes one query and flattens the bindings into plain string maps.
func (c *WikidataClient) run(ctx context.Context, query string) ([]map[string]string, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, helper.NewError("build sparql request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, helper.NewError("run sparql query", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, helper.NewError("run sparql query",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var parsed sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, helper.NewError("decode sparql response", err)
	}

	rows := make([]map[string]string, 0, len(parsed.Results.Bindings))
	for _, binding := range parsed.Results.Bindings {
		row := make(map[string]string, len(binding))
		for key, value := range binding {
			row[key] = value.Value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// sparqlString quotes a literal for inline use in a query.
func sparqlString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// sparqlID strips anything that is not part of a Q identifier, preventing
// query injection through stored ids.
func sparqlID(id string) string {
	var b strings.Builder
	for _, r := range id {
		if (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// entityID extracts the Q identifier from an entity URI.
func entityID(uri string) string {
	if uri == "" {
		return ""
	}
	if idx := strings.LastIndex(uri, "/"); idx >= 0 {
		uri = uri[idx+1:]
	}
	if !strings.HasPrefix(uri, "Q") {
		return ""
	}
	return uri
}
