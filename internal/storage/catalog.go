package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vaibh/video-chat/internal/types"
)

// Catalog is the durable SQLite index of uploaded videos. The cache holds
// the full record (transcript included) with a TTL; the catalog survives
// cache expiry so the library listing stays complete.
type Catalog struct {
	db *sql.DB
}

// NewCatalog opens (and if needed creates) the catalog database.
func NewCatalog(dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS videos (
		video_id TEXT PRIMARY KEY,
		original_filename TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		duration REAL NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		processing_status TEXT NOT NULL,
		thumbnail_path TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_videos_created_at ON videos(created_at);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create table: %v", err)
	}

	return &Catalog{db: db}, nil
}

// SaveVideo inserts or updates a video's catalog row.
func (c *Catalog) SaveVideo(meta *types.VideoMeta) error {
	query := `
	INSERT OR REPLACE INTO videos
		(video_id, original_filename, file_size, duration, width, height, created_at, processing_status, thumbnail_path)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(query,
		meta.VideoID, meta.OriginalFilename, meta.FileSize, meta.Duration,
		meta.Width, meta.Height, meta.CreatedAt, meta.ProcessingStatus, meta.ThumbnailPath)
	if err != nil {
		return fmt.Errorf("failed to save video metadata: %v", err)
	}
	return nil
}

// GetVideo retrieves one video's catalog row.
func (c *Catalog) GetVideo(videoID string) (*types.VideoMeta, error) {
	query := `
	SELECT video_id, original_filename, file_size, duration, width, height, created_at, processing_status, thumbnail_path
	FROM videos WHERE video_id = ?
	`

	meta, err := scanVideo(c.db.QueryRow(query, videoID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video: %v", err)
	}
	return meta, nil
}

// ListVideos returns videos newest first, capped at limit when positive.
func (c *Catalog) ListVideos(limit int) ([]*types.VideoMeta, error) {
	query := `
	SELECT video_id, original_filename, file_size, duration, width, height, created_at, processing_status, thumbnail_path
	FROM videos ORDER BY created_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %v", err)
	}
	defer rows.Close()

	var videos []*types.VideoMeta
	for rows.Next() {
		meta, err := scanVideo(rows)
		if err != nil {
			continue
		}
		videos = append(videos, meta)
	}
	return videos, rows.Err()
}

// DeleteVideo removes a video's catalog row.
func (c *Catalog) DeleteVideo(videoID string) error {
	_, err := c.db.Exec(`DELETE FROM videos WHERE video_id = ?`, videoID)
	if err != nil {
		return fmt.Errorf("failed to delete video: %v", err)
	}
	return nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVideo(row rowScanner) (*types.VideoMeta, error) {
	var (
		meta      types.VideoMeta
		createdAt time.Time
		thumbnail sql.NullString
	)

	err := row.Scan(&meta.VideoID, &meta.OriginalFilename, &meta.FileSize,
		&meta.Duration, &meta.Width, &meta.Height, &createdAt,
		&meta.ProcessingStatus, &thumbnail)
	if err != nil {
		return nil, err
	}

	meta.CreatedAt = createdAt
	meta.ThumbnailPath = thumbnail.String
	meta.Title = strings.TrimSuffix(meta.OriginalFilename, filepath.Ext(meta.OriginalFilename))
	return &meta, nil
}
