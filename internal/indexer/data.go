package indexer

// InvertedIndex maps a lowercase token to its posting list: doc_id to the
// accumulated weighted score that term earned in that document. Scores are
// additive across fields and across repeat ingestions of the same doc_id.
type InvertedIndex map[string]map[string]int64

// DocStoreEntry is the last-write-wins metadata the query processor needs
// to shape a result: the fields it reads are exactly these three.
type DocStoreEntry struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// DocStore maps doc_id to its DocStoreEntry.
type DocStore map[string]DocStoreEntry

// Field weights applied to raw term frequency before it is summed into a
// document's score for a term. CONTENT=1, HEADING=4, TITLE=8.
const (
	WeightContent int64 = 1
	WeightHeading int64 = 4
	WeightTitle   int64 = 8
)
