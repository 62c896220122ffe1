package pitchlens

// Match is a knowledge document scored against a query.
type Match struct {
	Content         string   `json:"content"`
	Topic           string   `json:"topic"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags,omitempty"`
	SimilarityScore float32  `json:"similarity_score"`
}

// TopicInfo describes one knowledge corpus entry.
type TopicInfo struct {
	ID       int      `json:"id"`
	Topic    string   `json:"topic"`
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
}

// SearchRequest holds knowledge search parameters. Zero TopK uses the server
// default; a nil SimilarityThreshold uses the server default threshold.
type SearchRequest struct {
	Query               string   `json:"query"`
	TopK                int      `json:"top_k,omitempty"`
	SimilarityThreshold *float32 `json:"similarity_threshold,omitempty"`
}

// Analysis is a generated report with the knowledge matches that grounded it.
type Analysis struct {
	Report  string  `json:"report"`
	Sources []Match `json:"sources"`
}

// Evaluation holds judge scores for an analysis, each on a 1-10 scale.
type Evaluation struct {
	Accuracy     float64 `json:"accuracy"`
	Completeness float64 `json:"completeness"`
	Usefulness   float64 `json:"usefulness"`
	Overall      float64 `json:"overall"`
	Feedback     string  `json:"feedback"`
}

// HealthReport is the aggregated server health status.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type searchResponse struct {
	Matches []Match `json:"matches"`
	Count   int     `json:"count"`
}

type topicsResponse struct {
	Topics []TopicInfo `json:"topics"`
	Count  int         `json:"count"`
}

type analyzeRequest struct {
	Content string `json:"content"`
}

type evaluateRequest struct {
	Content  string `json:"content"`
	Analysis string `json:"analysis"`
}
