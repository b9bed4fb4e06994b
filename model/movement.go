package model

// Movement is a persistent graph node for an art movement or period,
// keyed by name.
type Movement struct {
	Name string `json:"name"`
}
