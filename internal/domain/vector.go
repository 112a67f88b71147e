package domain

// Neighbor is a single nearest-neighbor hit: the database position of the
// vector and its distance from the query.
type Neighbor struct {
	Index    int
	Distance float64
}
