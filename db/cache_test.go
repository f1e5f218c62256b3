package db

import (
	"testing"
	"time"

	. "github.com/stevegt/goadapt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExistingCache(t *testing.T) {
	db := setup(t)
	root := rootNode()
	cache, err := NewExistingCache()
	require.NoError(t, err)
	defer cache.Close()

	got, err := cache.Existing(root, db.Dir, Locs{})
	require.NoError(t, err)
	assert.Empty(t, got)

	for _, locs := range rootLocsList()[:2] {
		Ck(root.Create(db.Dir, locs))
	}
	assert.Eventually(t, func() bool {
		got, err := cache.Existing(root, db.Dir, Locs{})
		return err == nil && len(got) == 2
	}, 2*time.Second, 10*time.Millisecond)

	// a new second-level directory invalidates the listing
	Ck(root.Create(db.Dir, L(1, "c")))
	assert.Eventually(t, func() bool {
		got, err := cache.Existing(root, db.Dir, Locs{})
		return err == nil && len(got) == 3
	}, 2*time.Second, 10*time.Millisecond)

	// and so does a new first-level one
	Ck(root.Create(db.Dir, L(5, "x")))
	assert.Eventually(t, func() bool {
		got, err := cache.Existing(root, db.Dir, Locs{})
		return err == nil && len(got) == 4
	}, 2*time.Second, 10*time.Millisecond)

	Ck(root.Remove(db.Dir, L(1, "a")))
	assert.Eventually(t, func() bool {
		got, err := cache.Existing(root, db.Dir, Locs{})
		return err == nil && len(got) == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestExistingCacheFlush(t *testing.T) {
	db := setup(t)
	root := rootNode()
	cache, err := NewExistingCache()
	require.NoError(t, err)
	defer cache.Close()

	Ck(root.Create(db.Dir, L(1, "a")))
	first, err := cache.Existing(root, db.Dir, Locs{})
	require.NoError(t, err)
	cache.Flush()
	second, err := cache.Existing(root, db.Dir, Locs{})
	require.NoError(t, err)
	assert.Equal(t, sortedStrings(first), sortedStrings(second))
}
