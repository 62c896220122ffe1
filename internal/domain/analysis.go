package domain

// Analysis is a generated investment analysis report together with the
// knowledge matches that grounded it.
type Analysis struct {
	Report  string  `json:"report"`
	Sources []Match `json:"sources"`
}

// Evaluation holds LLM-judge scores for an analysis, each on a 1-10 scale.
type Evaluation struct {
	Accuracy     float64 `json:"accuracy"`
	Completeness float64 `json:"completeness"`
	Usefulness   float64 `json:"usefulness"`
	Overall      float64 `json:"overall"`
	Feedback     string  `json:"feedback"`
}
