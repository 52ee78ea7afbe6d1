// Package backup keeps verbatim copies of theme assets taken right before they
// are patched, so a revert can put the original content back.
//
// Files are named {shopSlug}_{themeID}_{assetSlug}_{unixMillis}.liquid inside
// the backup directory. When an Index is attached every saved file is also
// recorded there and lookups go through it; files without an index row (older
// installs, copies made by hand) are still found by scanning the directory.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/Muneebkh2/shopify-iframe-app/pkg/errors"
)

const fileSuffix = ".liquid"

// maxCollisionBumps bounds how far Save moves a timestamp forward to find a free name.
const maxCollisionBumps = 1000

var nonWord = regexp.MustCompile(`\W+`)

// Record describes one backup file.
type Record struct {
	ID        string    `json:"id,omitempty"`
	Shop      string    `json:"shop"`
	ThemeID   int64     `json:"themeId"`
	AssetKey  string    `json:"assetKey,omitempty"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"createdAt"`
	Size      int64     `json:"size"`
}

type Store struct {
	dir    string
	index  *Index
	now    func() time.Time
	logger *zap.Logger
}

// NewStore creates a store over dir. index may be nil.
func NewStore(dir string, index *Index, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		dir:    dir,
		index:  index,
		now:    time.Now,
		logger: logger,
	}
}

func (s *Store) Dir() string { return s.dir }

// ShopSlug replaces every run of non-word characters in shop with "-".
func ShopSlug(shop string) string {
	return nonWord.ReplaceAllString(shop, "-")
}

// AssetSlug turns "snippets/card-product.liquid" into "snippets_card-product".
func AssetSlug(assetKey string) string {
	return strings.TrimSuffix(strings.ReplaceAll(assetKey, "/", "_"), fileSuffix)
}

// Filename builds the backup file name for an asset at ms.
func Filename(shop string, themeID int64, assetKey string, ms int64) string {
	return fmt.Sprintf("%s%d%s", assetPrefix(shop, themeID, assetKey), ms, fileSuffix)
}

func assetPrefix(shop string, themeID int64, assetKey string) string {
	return fmt.Sprintf("%s_%d_%s_", ShopSlug(shop), themeID, AssetSlug(assetKey))
}

// ParseTimestamp extracts the trailing millisecond timestamp of a backup file name.
func ParseTimestamp(filename string) (int64, bool) {
	if !strings.HasSuffix(filename, fileSuffix) {
		return 0, false
	}
	base := strings.TrimSuffix(filename, fileSuffix)
	i := strings.LastIndex(base, "_")
	if i < 0 || i == len(base)-1 {
		return 0, false
	}
	ms, err := strconv.ParseInt(base[i+1:], 10, 64)
	if err != nil || ms < 0 {
		return 0, false
	}
	return ms, true
}

// Save writes content verbatim to a new backup file and returns its record.
func (s *Store) Save(ctx context.Context, shop string, themeID int64, assetKey, content string) (*Record, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, &apperrors.ErrBackup{AssetKey: assetKey, Err: err}
	}

	ms := s.now().UnixMilli()
	var (
		f    *os.File
		name string
		err  error
	)
	for attempt := 0; attempt < maxCollisionBumps; attempt++ {
		name = Filename(shop, themeID, assetKey, ms)
		f, err = os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, &apperrors.ErrBackup{AssetKey: assetKey, Err: err}
		}
		ms++
	}
	if f == nil {
		return nil, &apperrors.ErrBackup{AssetKey: assetKey, Err: fmt.Errorf("no free backup name after %d attempts", maxCollisionBumps)}
	}

	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return nil, &apperrors.ErrBackup{AssetKey: assetKey, Err: err}
	}
	if err := f.Close(); err != nil {
		return nil, &apperrors.ErrBackup{AssetKey: assetKey, Err: err}
	}

	rec := &Record{
		ID:        uuid.New().String(),
		Shop:      shop,
		ThemeID:   themeID,
		AssetKey:  assetKey,
		Filename:  name,
		CreatedAt: time.UnixMilli(ms).UTC(),
		Size:      int64(len(content)),
	}
	if s.index != nil {
		if err := s.index.Insert(ctx, *rec); err != nil {
			return nil, &apperrors.ErrBackup{AssetKey: assetKey, Err: err}
		}
	}

	s.logger.Info("Theme asset backed up",
		zap.String("shop", shop),
		zap.Int64("theme_id", themeID),
		zap.String("asset_key", assetKey),
		zap.String("filename", name),
	)
	return rec, nil
}

// Latest returns the backup with the greatest timestamp for the asset.
// No backup is an *ErrNotFound.
func (s *Store) Latest(ctx context.Context, shop string, themeID int64, assetKey string) (*Record, error) {
	var indexed *Record
	if s.index != nil {
		rec, err := s.index.Latest(ctx, shop, themeID, assetKey)
		if err != nil {
			return nil, err
		}
		indexed = rec
	}

	scanned, err := s.scanLatest(shop, themeID, assetKey)
	if err != nil {
		return nil, err
	}

	switch {
	case indexed == nil && scanned == nil:
		return nil, &apperrors.ErrNotFound{Resource: "backup", ID: assetKey}
	case indexed == nil:
		return scanned, nil
	case scanned != nil && scanned.CreatedAt.After(indexed.CreatedAt):
		// a file newer than anything indexed was dropped in by hand
		return scanned, nil
	default:
		return indexed, nil
	}
}

// scanLatest walks the directory for the asset's files and picks the numeric max.
func (s *Store) scanLatest(shop string, themeID int64, assetKey string) (*Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &apperrors.ErrBackup{AssetKey: assetKey, Err: err}
	}

	prefix := assetPrefix(shop, themeID, assetKey)
	var (
		best   string
		bestMs int64 = -1
		size   int64
	)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		ms, ok := ParseTimestamp(name)
		if !ok || name != Filename(shop, themeID, assetKey, ms) {
			continue
		}
		if ms > bestMs {
			best, bestMs = name, ms
			if info, err := e.Info(); err == nil {
				size = info.Size()
			}
		}
	}
	if best == "" {
		return nil, nil
	}
	return &Record{
		Shop:      shop,
		ThemeID:   themeID,
		AssetKey:  assetKey,
		Filename:  best,
		CreatedAt: time.UnixMilli(bestMs).UTC(),
		Size:      size,
	}, nil
}

// Read returns the content of a backup file.
func (s *Store) Read(ctx context.Context, rec *Record) (string, error) {
	if rec == nil || rec.Filename == "" || filepath.Base(rec.Filename) != rec.Filename {
		return "", &apperrors.ErrBackup{AssetKey: recordAsset(rec), Err: fmt.Errorf("invalid backup file name")}
	}
	data, err := os.ReadFile(filepath.Join(s.dir, rec.Filename))
	if err != nil {
		return "", &apperrors.ErrBackup{AssetKey: recordAsset(rec), Err: err}
	}
	return string(data), nil
}

// List returns the backups of a shop's theme, newest first. Without an index the
// asset key is not recoverable from the file name and is left empty.
func (s *Store) List(ctx context.Context, shop string, themeID int64) ([]Record, error) {
	if s.index != nil {
		return s.index.List(ctx, shop, themeID)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	prefix := fmt.Sprintf("%s_%d_", ShopSlug(shop), themeID)
	var records []Record
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		ms, ok := ParseTimestamp(name)
		if !ok {
			continue
		}
		rec := Record{Shop: shop, ThemeID: themeID, Filename: name, CreatedAt: time.UnixMilli(ms).UTC()}
		if info, err := e.Info(); err == nil {
			rec.Size = info.Size()
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func recordAsset(rec *Record) string {
	if rec == nil {
		return ""
	}
	return rec.AssetKey
}
