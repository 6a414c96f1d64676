package domain

// Product is one catalog row. The catalog owns these records; the
// pipeline treats them as read-only values for the duration of a request.
type Product struct {
	ID           int64
	Name         string
	URL          string
	Description  string
	MainAccords  string
	Gender       string
	Season       string
	Time         string
	Longevity    string
	Sillage      string
	PositiveRate float64 // bounded to [0,1], 0 when unknown
}

// RankedResult is a Product annotated with ranking scores.
// Ordered descending by FinalScore, never persisted.
type RankedResult struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	PositiveRate float64 `json:"positive_rate"`
	Similarity   float64 `json:"similarity"`
	FinalScore   float64 `json:"final_score"`
}
