// Package openlibrary queries the Open Library API for books, editions, and
// authors. No auth required.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bnema/entertainbot/internal/adapters/fetch"
	"github.com/bnema/entertainbot/internal/domain"
)

const searchFields = "key,title,author_name,first_publish_year,edition_count," +
	"isbn,subject,cover_i,ratings_average,number_of_pages_median,language,publisher"

type Client struct {
	fetcher *fetch.Client
}

func NewClient(fetcher *fetch.Client) *Client {
	return &Client{fetcher: fetcher}
}

type bookDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	EditionCount     int      `json:"edition_count"`
	ISBN             []string `json:"isbn"`
	Subject          []string `json:"subject"`
	CoverID          int      `json:"cover_i"`
	RatingsAverage   float64  `json:"ratings_average"`
	PagesMedian      int      `json:"number_of_pages_median"`
	Language         []string `json:"language"`
	Publisher        []string `json:"publisher"`
}

func (d bookDoc) toBook() domain.Book {
	book := domain.Book{
		Title:            d.Title,
		AuthorNames:      d.AuthorName,
		FirstPublishYear: d.FirstPublishYear,
		EditionCount:     d.EditionCount,
		CoverID:          d.CoverID,
		Key:              d.Key,
		RatingsAverage:   d.RatingsAverage,
		Pages:            d.PagesMedian,
	}
	// Trim the noisier list fields so tool results stay compact.
	book.ISBN = head(d.ISBN, 3)
	book.Subjects = head(d.Subject, 10)
	book.Languages = head(d.Language, 3)
	book.Publishers = head(d.Publisher, 3)
	if d.CoverID != 0 {
		book.CoverURL = CoverURL(d.CoverID, "b", "M")
	}
	return book
}

func head(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

// SearchBooks searches by title, author, or keyword. Limit is clamped to 20.
func (c *Client) SearchBooks(ctx context.Context, query string, limit int) ([]domain.Book, error) {
	return c.searchDocs(ctx, map[string]any{
		"q": query, "limit": clampLimit(limit, 5, 20), "fields": searchFields,
	})
}

// SearchByAuthor searches books written by a specific author.
func (c *Client) SearchByAuthor(ctx context.Context, author string, limit int) ([]domain.Book, error) {
	return c.searchDocs(ctx, map[string]any{
		"author": author, "limit": clampLimit(limit, 5, 20), "fields": searchFields,
	})
}

func (c *Client) searchDocs(ctx context.Context, params map[string]any) ([]domain.Book, error) {
	raw, found, err := c.fetcher.Get(ctx, "/search.json", params)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	if !found {
		return nil, nil
	}

	var envelope struct {
		Docs []bookDoc `json:"docs"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode book search response: %w", err)
	}
	books := make([]domain.Book, 0, len(envelope.Docs))
	for _, doc := range envelope.Docs {
		books = append(books, doc.toBook())
	}
	return books, nil
}

// GetEditionByISBN looks up an edition by ISBN-10 or ISBN-13. Returns
// (nil, nil) when no edition matches.
func (c *Client) GetEditionByISBN(ctx context.Context, isbn string) (*domain.BookEdition, error) {
	isbn = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(isbn, "-", ""), " ", ""))

	raw, found, err := c.fetcher.Get(ctx, "/isbn/"+isbn+".json", nil)
	if err != nil {
		return nil, fmt.Errorf("get edition by isbn: %w", err)
	}
	if !found {
		return nil, nil
	}

	var payload struct {
		Title       string   `json:"title"`
		ISBN13      []string `json:"isbn_13"`
		ISBN10      []string `json:"isbn_10"`
		Publishers  []string `json:"publishers"`
		PublishDate string   `json:"publish_date"`
		Pages       int      `json:"number_of_pages"`
		Covers      []int    `json:"covers"`
		Key         string   `json:"key"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode edition response: %w", err)
	}

	edition := &domain.BookEdition{
		Title:       payload.Title,
		ISBN13:      payload.ISBN13,
		ISBN10:      payload.ISBN10,
		Publishers:  payload.Publishers,
		PublishDate: payload.PublishDate,
		Pages:       payload.Pages,
		Key:         payload.Key,
	}
	if len(payload.Covers) > 0 {
		edition.CoverURL = CoverURL(payload.Covers[0], "b", "M")
	}
	return edition, nil
}

// SearchAuthors searches authors by name, returning up to 10 matches.
func (c *Client) SearchAuthors(ctx context.Context, query string) ([]domain.Author, error) {
	raw, found, err := c.fetcher.Get(ctx, "/search/authors.json", map[string]any{
		"q": query, "limit": 10,
	})
	if err != nil {
		return nil, fmt.Errorf("search authors: %w", err)
	}
	if !found {
		return nil, nil
	}

	var envelope struct {
		Docs []struct {
			Key       string `json:"key"`
			Name      string `json:"name"`
			BirthDate string `json:"birth_date"`
			DeathDate string `json:"death_date"`
			TopWork   string `json:"top_work"`
			WorkCount int    `json:"work_count"`
		} `json:"docs"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode author search response: %w", err)
	}

	authors := make([]domain.Author, 0, len(envelope.Docs))
	for _, doc := range envelope.Docs {
		authors = append(authors, domain.Author{
			Name:      doc.Name,
			Key:       "/authors/" + doc.Key,
			BirthDate: doc.BirthDate,
			DeathDate: doc.DeathDate,
			TopWork:   doc.TopWork,
			WorkCount: doc.WorkCount,
		})
	}
	return authors, nil
}

// CoverURL builds an Open Library cover image URL. coverType is 'b' for
// books or 'a' for authors; size is 'S', 'M', or 'L'.
func CoverURL(coverID int, coverType, size string) string {
	return fmt.Sprintf("https://covers.openlibrary.org/%s/id/%d-%s.jpg", coverType, coverID, size)
}

// Health verifies the API is reachable.
func (c *Client) Health(ctx context.Context) bool {
	_, _, err := c.fetcher.Get(ctx, "/search.json", map[string]any{"q": "test", "limit": 1})
	return err == nil
}

func clampLimit(limit, fallback, maxValue int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxValue {
		return maxValue
	}
	return limit
}
