package repository

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"arenad/internal/constants"
)

// Pagination is the page summary attached to a list response
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

// Links are the navigation links of a list response. Prev and Next are
// null when there is no such page.
type Links struct {
	First string  `json:"first"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// Metadata wraps a list result for the caller
type Metadata struct {
	Pagination Pagination `json:"pagination"`
	Links      Links      `json:"links"`
}

// MakeMetadata builds pagination and links for result. requestURL is the URL
// the list was requested with; links are copies of it that differ only in
// the page parameter. An unpaginated request carries no pageSize, so its
// links carry none either: next is "?page=2" and the follow-up read is
// served at the same default page size.
func MakeMetadata(desc QueryDescriptor, result QueryResult, requestURL string) (Metadata, error) {
	page, size := result.Page, result.PageSize
	if page <= 0 || size <= 0 {
		w := NewWindow(desc.Page, desc.PageSize, constants.DefaultPageSize)
		page, size = w.Page, w.Size
	}

	u, err := url.Parse(requestURL)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to parse request url: %w", err)
	}

	meta := Metadata{
		Pagination: Pagination{Page: page, PageSize: size, Total: result.Total},
		Links:      Links{First: withPage(u, 1)},
	}
	if page > 1 {
		prev := withPage(u, page-1)
		meta.Links.Prev = &prev
	}
	if int64(page)*int64(size) < result.Total {
		next := withPage(u, page+1)
		meta.Links.Next = &next
	}
	return meta, nil
}

// withPage returns u with its page parameter set to page. Every other
// parameter keeps its position and encoding; a missing page is appended.
func withPage(u *url.URL, page int) string {
	value := "page=" + strconv.Itoa(page)

	var parts []string
	replaced := false
	if u.RawQuery != "" {
		for _, part := range strings.Split(u.RawQuery, "&") {
			if queryKey(part) == "page" {
				if replaced {
					continue
				}
				part = value
				replaced = true
			}
			parts = append(parts, part)
		}
	}
	if !replaced {
		parts = append(parts, value)
	}

	out := *u
	out.RawQuery = strings.Join(parts, "&")
	out.ForceQuery = false
	return out.String()
}

func queryKey(part string) string {
	key, _, _ := strings.Cut(part, "=")
	if unescaped, err := url.QueryUnescape(key); err == nil {
		return unescaped
	}
	return key
}
