package sharedmodels

// SearchRequest is the payload posted to /run_hotels_search. Dates are
// calendar dates in YYYY-MM-DD form; check_out_date is always check_in_date
// plus the number of nights.
type SearchRequest struct {
	Q            string `json:"q"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
}

// SearchForm is the raw widget field shape, accepted as an alternative to
// SearchRequest so the server can derive the dates itself.
type SearchForm struct {
	Where  string `json:"where"`
	When   string `json:"when"`
	Nights string `json:"nights"`
}

type Hotel struct {
	Name     string  `json:"name"`
	Link     string  `json:"link"`
	Price    string  `json:"price"`
	Stars    int     `json:"stars"`
	Rating   float64 `json:"rating"`
	Reviews  int     `json:"reviews"`
	ImageURL string  `json:"image_url"`
}
