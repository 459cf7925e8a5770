// Package store persists generated articles and durable score caches
// in a local SQLite database.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"curator/internal/core"
)

// Store is the SQLite-backed persistence collaborator. The pipeline
// writes through it and never reads generation inputs back.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "curator.db")
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
	articlesTable := `
	CREATE TABLE IF NOT EXISTS generated_articles (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		title TEXT,
		summary TEXT,
		content TEXT,
		category TEXT,
		tags TEXT,
		source_refs TEXT,
		confidence REAL,
		word_count INTEGER,
		reading_time INTEGER,
		difficulty TEXT,
		model_used TEXT,
		generated_at DATETIME,
		metadata TEXT
	);`

	scoresTable := `
	CREATE TABLE IF NOT EXISTS score_cache (
		cache_key TEXT PRIMARY KEY,
		stage TEXT,
		score REAL,
		reasoning TEXT,
		cached_at DATETIME
	);`

	tables := []string{articlesTable, scoresTable}
	for _, table := range tables {
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

// SaveArticle persists a generated article together with its pipeline
// metadata and returns the stored record's identifier.
func (s *Store) SaveArticle(article *core.GeneratedArticle, userID string, meta core.PipelineMetadata) (string, error) {
	if article == nil {
		return "", fmt.Errorf("article is nil")
	}

	metadata, _ := json.Marshal(meta)

	query := `
	INSERT OR REPLACE INTO generated_articles
	(id, user_id, title, summary, content, category, tags, source_refs,
	 confidence, word_count, reading_time, difficulty, model_used, generated_at, metadata)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		article.ID,
		userID,
		article.Title,
		article.Summary,
		article.Content,
		article.Category,
		strings.Join(article.Tags, ","),
		strings.Join(article.SourceRefs, "\n"),
		article.Confidence,
		article.WordCount,
		article.ReadingTime,
		article.Difficulty,
		article.ModelUsed,
		article.GeneratedAt,
		string(metadata),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save article: %w", err)
	}

	return article.ID, nil
}

// GetArticle retrieves a stored article by record id.
func (s *Store) GetArticle(id string) (*core.GeneratedArticle, error) {
	query := `
	SELECT id, title, summary, content, category, tags, source_refs,
	       confidence, word_count, reading_time, difficulty, model_used, generated_at
	FROM generated_articles WHERE id = ?`

	var a core.GeneratedArticle
	var tags, refs string
	err := s.db.QueryRow(query, id).Scan(
		&a.ID, &a.Title, &a.Summary, &a.Content, &a.Category, &tags, &refs,
		&a.Confidence, &a.WordCount, &a.ReadingTime, &a.Difficulty, &a.ModelUsed, &a.GeneratedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("article not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load article: %w", err)
	}

	if tags != "" {
		a.Tags = strings.Split(tags, ",")
	}
	if refs != "" {
		a.SourceRefs = strings.Split(refs, "\n")
	}
	return &a, nil
}

// CacheScore records a score in the durable cache.
func (s *Store) CacheScore(stage, cacheKey string, score float64, reasoning string) error {
	query := `
	INSERT OR REPLACE INTO score_cache (cache_key, stage, score, reasoning, cached_at)
	VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query, cacheKey, stage, score, reasoning, time.Now().UTC())
	return err
}

// GetCachedScore retrieves a cached score no older than maxAge. The
// boolean reports whether a fresh entry was found.
func (s *Store) GetCachedScore(stage, cacheKey string, maxAge time.Duration) (float64, bool, error) {
	query := `
	SELECT score FROM score_cache
	WHERE cache_key = ? AND stage = ? AND cached_at > ?`

	cutoff := time.Now().UTC().Add(-maxAge)
	var score float64
	err := s.db.QueryRow(query, cacheKey, stage, cutoff).Scan(&score)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query score cache: %w", err)
	}
	return score, true, nil
}

// CacheStats contains statistics about the persisted data.
type CacheStats struct {
	ArticleCount int
	ScoreCount   int
	FileSize     int64
	LastUpdated  time.Time
}

// GetCacheStats returns counts and file size for the cache CLI.
func (s *Store) GetCacheStats() (*CacheStats, error) {
	stats := &CacheStats{}

	queries := map[string]*int{
		"SELECT COUNT(*) FROM generated_articles": &stats.ArticleCount,
		"SELECT COUNT(*) FROM score_cache":        &stats.ScoreCount,
	}

	for query, target := range queries {
		if err := s.db.QueryRow(query).Scan(target); err != nil {
			return nil, fmt.Errorf("failed to get count: %w", err)
		}
	}

	if fileInfo, err := os.Stat(s.path); err == nil {
		stats.FileSize = fileInfo.Size()
		stats.LastUpdated = fileInfo.ModTime()
	}

	return stats, nil
}

// ClearCache removes all cached scores. Stored articles stay.
func (s *Store) ClearCache() error {
	if _, err := s.db.Exec("DELETE FROM score_cache"); err != nil {
		return fmt.Errorf("failed to clear score cache: %w", err)
	}
	if _, err := s.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}

// CleanupOldScores removes score cache entries older than maxAge.
func (s *Store) CleanupOldScores(maxAge time.Duration) error {
	cutoff := time.Now().UTC().Add(-maxAge)
	if _, err := s.db.Exec("DELETE FROM score_cache WHERE cached_at < ?", cutoff); err != nil {
		return fmt.Errorf("failed to clean old scores: %w", err)
	}
	return nil
}
