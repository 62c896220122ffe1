package domain

// Document is an immutable knowledge base entry. ID doubles as the row index
// into the embedding matrix, so corpus order must stay stable across releases.
type Document struct {
	ID       int
	Topic    string
	Category string
	Content  string
	Tags     []string
}

// Match is a single retrieval hit. Built fresh per query, never persisted.
type Match struct {
	Content         string   `json:"content"`
	Topic           string   `json:"topic"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags"`
	SimilarityScore float32  `json:"similarity_score"`
}

// TopicInfo is the introspection view of a knowledge document.
type TopicInfo struct {
	ID       int      `json:"id"`
	Topic    string   `json:"topic"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}
