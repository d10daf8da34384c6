// Package store persists crawl results and generated articles in a local
// SQLite database so repeated runs against the same site skip redundant
// crawling. Expiry is lazy: queries filter on age rather than relying on
// a background sweep.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"seoforge/internal/core"
)

// Store wraps the SQLite-backed persistence layer.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "seoforge.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	pagesTable := `
	CREATE TABLE IF NOT EXISTS pages (
		url TEXT PRIMARY KEY,
		slug TEXT,
		title TEXT,
		crawled_text TEXT,
		health_score INTEGER,
		update_priority TEXT,
		stale INTEGER,
		last_crawled DATETIME
	);`

	articlesTable := `
	CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		title TEXT,
		slug TEXT,
		kind TEXT,
		status TEXT,
		payload TEXT,
		date_generated DATETIME
	);`

	for _, table := range []string{pagesTable, articlesTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SavePages upserts the crawled inventory.
func (s *Store) SavePages(pages []core.SitemapPage) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT OR REPLACE INTO pages
	(url, slug, title, crawled_text, health_score, update_priority, stale, last_crawled)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	for _, page := range pages {
		if _, err := tx.Exec(query,
			page.URL, page.Slug, page.Title, page.CrawledText,
			page.HealthScore, page.UpdatePriority, page.Stale, page.LastCrawled,
		); err != nil {
			return fmt.Errorf("failed to save page %s: %w", page.URL, err)
		}
	}
	return tx.Commit()
}

// GetPages returns pages crawled within maxAge. Older rows are simply
// not returned.
func (s *Store) GetPages(maxAge time.Duration) ([]core.SitemapPage, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	rows, err := s.db.Query(`
	SELECT url, slug, title, crawled_text, health_score, update_priority, stale, last_crawled
	FROM pages WHERE last_crawled > ? ORDER BY url`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var pages []core.SitemapPage
	for rows.Next() {
		var page core.SitemapPage
		if err := rows.Scan(
			&page.URL, &page.Slug, &page.Title, &page.CrawledText,
			&page.HealthScore, &page.UpdatePriority, &page.Stale, &page.LastCrawled,
		); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

// SaveArticle persists a finished ContentItem with its payload.
func (s *Store) SaveArticle(item core.ContentItem) error {
	payload, err := json.Marshal(item.Generated)
	if err != nil {
		return fmt.Errorf("failed to encode article payload: %w", err)
	}

	slug := ""
	var generatedAt time.Time
	if item.Generated != nil {
		slug = item.Generated.Slug
		generatedAt = item.Generated.DateGenerated
	}

	_, err = s.db.Exec(`
	INSERT OR REPLACE INTO articles
	(id, title, slug, kind, status, payload, date_generated)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Title, slug, string(item.Kind), string(item.Status), string(payload), generatedAt)
	return err
}

// GetArticle loads one stored article by ID. A missing row returns nil,
// not an error.
func (s *Store) GetArticle(id string) (*core.ContentItem, error) {
	row := s.db.QueryRow(`
	SELECT id, title, slug, kind, status, payload FROM articles WHERE id = ?`, id)

	var item core.ContentItem
	var slug, kind, status, payload string
	err := row.Scan(&item.ID, &item.Title, &slug, &kind, &status, &payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan article: %w", err)
	}

	item.Kind = core.ContentKind(kind)
	item.Status = core.ContentStatus(status)
	if payload != "" && payload != "null" {
		var generated core.GeneratedContent
		if err := json.Unmarshal([]byte(payload), &generated); err != nil {
			return nil, fmt.Errorf("failed to decode article payload: %w", err)
		}
		item.Generated = &generated
	}
	return &item, nil
}

// ListArticles returns stored articles, most recent first.
func (s *Store) ListArticles(limit int) ([]core.ContentItem, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
	SELECT id, title, slug, kind, status, payload FROM articles
	ORDER BY date_generated DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var items []core.ContentItem
	for rows.Next() {
		var item core.ContentItem
		var slug, kind, status, payload string
		if err := rows.Scan(&item.ID, &item.Title, &slug, &kind, &status, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		item.Kind = core.ContentKind(kind)
		item.Status = core.ContentStatus(status)
		if payload != "" && payload != "null" {
			var generated core.GeneratedContent
			if json.Unmarshal([]byte(payload), &generated) == nil {
				item.Generated = &generated
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Stats summarizes what the store holds.
type Stats struct {
	PageCount    int
	ArticleCount int
	SizeBytes    int64
	LastUpdated  time.Time
}

// GetStats returns store statistics.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM pages").Scan(&stats.PageCount); err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&stats.ArticleCount); err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		stats.SizeBytes = info.Size()
		stats.LastUpdated = info.ModTime()
	}
	return stats, nil
}

// Clear removes all persisted data and reclaims file space.
func (s *Store) Clear() error {
	for _, table := range []string{"pages", "articles"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if _, err := s.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}
