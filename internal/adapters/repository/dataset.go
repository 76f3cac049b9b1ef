package repository

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

// document mirrors the upstream index payload:
//
//	{
//	  "industries": ["CPG", "BANKING"],
//	  "data":       [{"name": "CPG", "average_score": 71.2, "top_companies": [...]}],
//	  "scoresData": {"CPG": [{"company": "Acme", "year": "2024", "period": 6,
//	                           "ranking": 1, "score": 87.31}]}
//	}
type document struct {
	Industries []string                   `json:"industries"`
	Overviews  []overviewDocument         `json:"data"`
	Scores     map[string][]scoreDocument `json:"scoresData"`
}

// scoreDocument is one ranked company observation as the upstream encodes it.
// Year and ranking arrive as strings in parts of the corpus, hence flexInt.
type scoreDocument struct {
	Company string  `json:"company"`
	Year    flexInt `json:"year"`
	Period  flexInt `json:"period"`
	Ranking flexInt `json:"ranking"`
	Score   float64 `json:"score"`
}

// overviewDocument is the optional pre-computed industry summary.
type overviewDocument struct {
	Name         string               `json:"name"`
	CompanyCount int                  `json:"company_count"`
	AverageScore float64              `json:"average_score"`
	MinScore     float64              `json:"min_score"`
	MaxScore     float64              `json:"max_score"`
	TopCompanies []topCompanyDocument `json:"top_companies"`
}

type topCompanyDocument struct {
	Company string  `json:"company"`
	Ranking flexInt `json:"ranking"`
	Score   float64 `json:"score"`
}

// flexInt decodes JSON numbers or numeric strings. Zero plus ok=false marks
// values that were absent or unparseable; rows carrying those are skipped at
// index time rather than failing the whole dataset.
type flexInt struct {
	value int
	ok    bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrDecode, err)
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			// Unparseable string; treat as absent.
			return nil
		}
		f.value = n
		f.ok = true
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return nil
	}
	f.value = n
	f.ok = true
	return nil
}

// decodeDocument parses a raw dataset payload.
func decodeDocument(data []byte) (*document, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &doc, nil
}
