package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/Muneebkh2/shopify-iframe-app/pkg/errors"
)

const (
	testShop  = "demo.myshopify.com"
	testTheme = int64(42)
	cardKey   = "snippets/card-product.liquid"
)

func newTestStore(t *testing.T, withIndex bool) *Store {
	t.Helper()
	dir := t.TempDir()
	var idx *Index
	if withIndex {
		var err error
		idx, err = OpenIndex(filepath.Join(dir, "index.db"))
		require.NoError(t, err)
		t.Cleanup(func() { idx.Close() })
	}
	return NewStore(dir, idx, zap.NewNop())
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestSlugs(t *testing.T) {
	assert.Equal(t, "demo-myshopify-com", ShopSlug(testShop))
	assert.Equal(t, "snippets_card-product", AssetSlug(cardKey))
	assert.Equal(t, "demo-myshopify-com_42_snippets_card-product_1700000000000.liquid",
		Filename(testShop, testTheme, cardKey, 1700000000000))

	ms, ok := ParseTimestamp("demo-myshopify-com_42_snippets_card-product_1700000000000.liquid")
	require.True(t, ok)
	assert.Equal(t, int64(1700000000000), ms)

	_, ok = ParseTimestamp("demo-myshopify-com_42_snippets_card-product_abc.liquid")
	assert.False(t, ok)
	_, ok = ParseTimestamp("notes.txt")
	assert.False(t, ok)
}

func TestSaveThenLatestReturnsContent(t *testing.T) {
	for _, withIndex := range []bool{true, false} {
		store := newTestStore(t, withIndex)
		store.now = fixedClock(1000)
		ctx := context.Background()

		rec, err := store.Save(ctx, testShop, testTheme, cardKey, "original")
		require.NoError(t, err)
		assert.Equal(t, Filename(testShop, testTheme, cardKey, 1000), rec.Filename)

		latest, err := store.Latest(ctx, testShop, testTheme, cardKey)
		require.NoError(t, err)
		assert.Equal(t, rec.Filename, latest.Filename)

		content, err := store.Read(ctx, latest)
		require.NoError(t, err)
		assert.Equal(t, "original", content)
	}
}

func TestSaveBumpsTimestampOnCollision(t *testing.T) {
	store := newTestStore(t, true)
	store.now = fixedClock(5000)
	ctx := context.Background()

	first, err := store.Save(ctx, testShop, testTheme, cardKey, "one")
	require.NoError(t, err)
	second, err := store.Save(ctx, testShop, testTheme, cardKey, "two")
	require.NoError(t, err)

	assert.NotEqual(t, first.Filename, second.Filename)
	assert.Equal(t, Filename(testShop, testTheme, cardKey, 5001), second.Filename)

	latest, err := store.Latest(ctx, testShop, testTheme, cardKey)
	require.NoError(t, err)
	content, err := store.Read(ctx, latest)
	require.NoError(t, err)
	assert.Equal(t, "two", content)
}

func TestLatestPicksNumericMaxFromDirectory(t *testing.T) {
	store := newTestStore(t, false)
	// lexical order differs from numeric order here
	for ms, body := range map[int64]string{999: "old", 1000: "new", 10: "oldest"} {
		name := Filename(testShop, testTheme, cardKey, ms)
		require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), name), []byte(body), 0o644))
	}
	// similar names that must not match
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), Filename(testShop, testTheme, "snippets/card-product-extra.liquid", 5000)), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), Filename("other.myshopify.com", testTheme, cardKey, 5000)), []byte("x"), 0o644))

	latest, err := store.Latest(context.Background(), testShop, testTheme, cardKey)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), latest.CreatedAt.UnixMilli())

	content, err := store.Read(context.Background(), latest)
	require.NoError(t, err)
	assert.Equal(t, "new", content)
}

func TestLatestFallsBackToUnindexedFiles(t *testing.T) {
	store := newTestStore(t, true)
	store.now = fixedClock(100)
	ctx := context.Background()

	_, err := store.Save(ctx, testShop, testTheme, cardKey, "indexed")
	require.NoError(t, err)

	manual := Filename(testShop, testTheme, cardKey, 200)
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), manual), []byte("manual"), 0o644))

	latest, err := store.Latest(ctx, testShop, testTheme, cardKey)
	require.NoError(t, err)
	assert.Equal(t, manual, latest.Filename)
}

func TestLatestNotFound(t *testing.T) {
	store := newTestStore(t, true)

	_, err := store.Latest(context.Background(), testShop, testTheme, cardKey)
	var notFound *apperrors.ErrNotFound
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "backup", notFound.Resource)
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t, true)
	ctx := context.Background()

	store.now = fixedClock(100)
	_, err := store.Save(ctx, testShop, testTheme, cardKey, "a")
	require.NoError(t, err)
	store.now = fixedClock(300)
	_, err = store.Save(ctx, testShop, testTheme, "snippets/product-thumbnail.liquid", "b")
	require.NoError(t, err)
	_, err = store.Save(ctx, testShop, 7, cardKey, "other theme")
	require.NoError(t, err)

	records, err := store.List(ctx, testShop, testTheme)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "snippets/product-thumbnail.liquid", records[0].AssetKey)
	assert.Equal(t, cardKey, records[1].AssetKey)
}

func TestReadRejectsPathTraversal(t *testing.T) {
	store := newTestStore(t, false)

	_, err := store.Read(context.Background(), &Record{Filename: "../etc/passwd"})
	var backupErr *apperrors.ErrBackup
	require.True(t, errors.As(err, &backupErr))
}
