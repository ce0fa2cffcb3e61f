package blog

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	DefaultPageSize = 20

	previousLinkLabel = "&laquo; Previous"
	nextLinkLabel     = "Next &raquo;"
)

type PageLink struct {
	URL    *string `json:"url"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
}

// Page is the paginated list envelope, shaped like the one PHP frameworks commonly render.
type Page struct {
	CurrentPage  int        `json:"current_page"`
	Data         []*Blog    `json:"data"`
	FirstPageURL string     `json:"first_page_url"`
	From         *int       `json:"from"`
	LastPage     int        `json:"last_page"`
	LastPageURL  string     `json:"last_page_url"`
	Links        []PageLink `json:"links"`
	NextPageURL  *string    `json:"next_page_url"`
	Path         string     `json:"path"`
	PerPage      int        `json:"per_page"`
	PrevPageURL  *string    `json:"prev_page_url"`
	To           *int       `json:"to"`
	Total        int        `json:"total"`
}

type ListResult struct {
	Blogs   []*Blog
	Total   int
	Page    int
	PerPage int
}

// ParsePageNumber interprets the page query value; anything missing, non-numeric
// or lower than 1 means the first page.
func ParsePageNumber(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func LastPage(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// NewPage builds the envelope; path is the absolute URL of the list endpoint, without query.
func NewPage(res ListResult, path string) *Page {
	lastPage := LastPage(res.Total, res.PerPage)
	data := res.Blogs
	if data == nil {
		data = []*Blog{}
	}

	p := &Page{
		CurrentPage:  res.Page,
		Data:         data,
		FirstPageURL: pageURL(path, 1),
		LastPage:     lastPage,
		LastPageURL:  pageURL(path, lastPage),
		Path:         path,
		PerPage:      res.PerPage,
		Total:        res.Total,
	}

	if len(data) > 0 {
		from := (res.Page-1)*res.PerPage + 1
		to := from + len(data) - 1
		p.From = &from
		p.To = &to
	}

	if res.Page > 1 {
		prev := pageURL(path, res.Page-1)
		p.PrevPageURL = &prev
	}
	if res.Page < lastPage {
		next := pageURL(path, res.Page+1)
		p.NextPageURL = &next
	}

	p.Links = make([]PageLink, 0, lastPage+2)
	p.Links = append(p.Links, PageLink{URL: p.PrevPageURL, Label: previousLinkLabel})
	for i := 1; i <= lastPage; i++ {
		u := pageURL(path, i)
		p.Links = append(p.Links, PageLink{
			URL:    &u,
			Label:  strconv.Itoa(i),
			Active: i == res.Page,
		})
	}
	p.Links = append(p.Links, PageLink{URL: p.NextPageURL, Label: nextLinkLabel})

	return p
}

func pageURL(path string, page int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	return fmt.Sprintf("%s?%s", path, q.Encode())
}
