package nyt

// listResponse is the body of GET /lists/current/{list}.json.
type listResponse struct {
	Status     string `json:"status"`
	NumResults int    `json:"num_results"`
	Results    struct {
		ListName    string `json:"list_name"`
		PublishedAt string `json:"published_date"`
		Books       []book `json:"books"`
	} `json:"results"`
}

type book struct {
	Rank          int    `json:"rank"`
	PrimaryISBN13 string `json:"primary_isbn13"`
	PrimaryISBN10 string `json:"primary_isbn10"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Description   string `json:"description"`
	BookImage     string `json:"book_image"`
}
