package model

// RelationType names a directed edge type in the property graph.
type RelationType string

const (
	RelationCreated      RelationType = "CREATED"
	RelationBelongsTo    RelationType = "BELONGS_TO"
	RelationInfluencedBy RelationType = "INFLUENCED_BY"
	RelationStudentOf    RelationType = "STUDENT_OF"
	// RelationRelated is visualization-only: an influence-direction-agnostic
	// colleague edge pointing from a related artist to the focal artist.
	RelationRelated RelationType = "RELATED"
)

// NodeKind classifies a visualization node.
type NodeKind string

const (
	NodeKindArtist   NodeKind = "artist"
	NodeKindArtwork  NodeKind = "artwork"
	NodeKindMovement NodeKind = "movement"
)

// Visual weights are presentational hints only, but they are fixed so graph
// assembly stays deterministic for snapshot comparisons.
const (
	WeightFocalArtist   = 20
	WeightRelatedArtist = 12
	WeightMovement      = 10
	WeightArtwork       = 8
)

// GraphNode is a renderable node, rebuilt on every visualization request.
// ID is namespaced as "{kind}-{rawId}" and unique within one response.
type GraphNode struct {
	ID     string   `json:"id"`
	Label  string   `json:"label"`
	Kind   NodeKind `json:"kind"`
	Weight int      `json:"weight"`
	// Slug is the routing parameter for clickable nodes (artist name or
	// artwork id); empty for movements.
	Slug string `json:"slug,omitempty"`
}

// GraphEdge is a renderable typed edge between two namespaced node ids.
type GraphEdge struct {
	Source string       `json:"source"`
	Target string       `json:"target"`
	Type   RelationType `json:"type"`
}

// GraphData is the bounded visualization graph around one focal artist.
type GraphData struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// NodeRef is a typed row for one store node as seen by the graph assembler.
// RawID resolution falls back ExternalID -> Name -> InternalID, and finally
// to the query argument for the focal artist.
type NodeRef struct {
	ExternalID string
	Name       string
	InternalID string
}

// RawID resolves the first non-empty identifier of the reference.
func (n NodeRef) RawID() string {
	if n.ExternalID != "" {
		return n.ExternalID
	}
	if n.Name != "" {
		return n.Name
	}
	return n.InternalID
}

// Label resolves the display name of the reference, falling back to its id.
func (n NodeRef) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.RawID()
}

// RelatedPair is one co-member artist together with the movement shared
// with the focal artist.
type RelatedPair struct {
	Artist   NodeRef
	Movement *NodeRef
}

// Neighborhood is the raw traversal result around one focal artist, before
// bounding and deduplication.
type Neighborhood struct {
	Focal     NodeRef
	Artworks  []NodeRef
	Movements []NodeRef
	Related   []RelatedPair
}
