package openlibrary

// searchResponse is the body of GET /search.json.
type searchResponse struct {
	NumFound int   `json:"numFound"`
	Start    int   `json:"start"`
	Docs     []doc `json:"docs"`
}

type doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	Subtitle         string   `json:"subtitle"`
	AuthorName       []string `json:"author_name"`
	ISBN             []string `json:"isbn"`
	FirstSentence    []string `json:"first_sentence"`
	FirstPublishYear int      `json:"first_publish_year"`
}

// searchFields limits the search response to what toCandidate reads.
const searchFields = "key,title,subtitle,author_name,isbn,first_sentence,first_publish_year"
