package models

// ProductsResponse is the JSON envelope returned by the products endpoint.
type ProductsResponse struct {
	Data       []Product  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
}

type CitiesResponse struct {
	Data []string `json:"data"`
}
