package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/steveyegge/partsbin/internal/storage"
	"github.com/steveyegge/partsbin/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "inventory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func addComponent(t *testing.T, store *SQLiteStorage, c types.Component) *types.Component {
	t.Helper()
	component := c
	require.NoError(t, store.CreateComponent(context.Background(), &component))
	return &component
}

func TestNewAppliesAllMigrations(t *testing.T) {
	store := newTestStore(t)

	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(schemaMigrations), version)
}

func TestInMemoryDatabase(t *testing.T) {
	ctx := context.Background()
	store, err := New(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	c := &types.Component{Name: "NE555", Category: "IC", Quantity: 4}
	require.NoError(t, store.CreateComponent(ctx, c))

	err = store.RunInTransaction(ctx, func(tx storage.Tx) error {
		got, err := tx.GetComponent(ctx, c.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, "NE555", got.Name)
		return nil
	})
	require.NoError(t, err)
}

func TestCreateAndGetComponent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	c := addComponent(t, store, types.Component{
		Name:           "ATMEGA328P",
		Category:       "IC",
		Specifications: "DIP-28",
		Source:         "digikey.com:/ATMEGA328P-PU",
		Quantity:       3,
		Storage:        "Drawer A1",
	})
	assert.NotZero(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero())

	got, err := store.GetComponent(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "ATMEGA328P", got.Name)
	assert.Equal(t, "IC", got.Category)
	assert.Equal(t, "DIP-28", got.Specifications)
	assert.Equal(t, "digikey.com:/ATMEGA328P-PU", got.Source)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, "Drawer A1", got.Storage)
	assert.WithinDuration(t, c.CreatedAt, got.CreatedAt, time.Second)
}

func TestCreateComponentValidates(t *testing.T) {
	store := newTestStore(t)

	err := store.CreateComponent(context.Background(), &types.Component{Name: "", Category: "IC"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestGetComponentNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetComponent(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestListComponentsOrderingAndFilters(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	addComponent(t, store, types.Component{Name: "LM358", Category: "IC", Quantity: 0, Storage: "Bin 2"})
	addComponent(t, store, types.Component{Name: "10k", Category: "Resistor", Quantity: 100, Specifications: "0603"})
	addComponent(t, store, types.Component{Name: "ATMEGA328P", Category: "IC", Quantity: 3, Storage: "Drawer A1"})
	addComponent(t, store, types.Component{Name: "100nF", Category: "Capacitor", Quantity: 50})

	all, err := store.ListComponents(ctx, types.ComponentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"100nF", "ATMEGA328P", "LM358", "10k"}, names(all))

	ics, err := store.ListComponents(ctx, types.ComponentFilter{Categories: []string{"IC"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"ATMEGA328P", "LM358"}, names(ics))

	query, err := store.ListComponents(ctx, types.ComponentFilter{Query: "0603"})
	require.NoError(t, err)
	assert.Equal(t, []string{"10k"}, names(query))

	minQty := 10
	plenty, err := store.ListComponents(ctx, types.ComponentFilter{MinQuantity: &minQty})
	require.NoError(t, err)
	assert.Equal(t, []string{"100nF", "10k"}, names(plenty))

	zero := true
	empty, err := store.ListComponents(ctx, types.ComponentFilter{ZeroQuantity: &zero})
	require.NoError(t, err)
	assert.Equal(t, []string{"LM358"}, names(empty))

	drawer, err := store.ListComponents(ctx, types.ComponentFilter{Storage: "drawer"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ATMEGA328P"}, names(drawer))

	limited, err := store.ListComponents(ctx, types.ComponentFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestListComponentsCreatedRange(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	old := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	addComponent(t, store, types.Component{Name: "old", Category: "IC", CreatedAt: old})
	addComponent(t, store, types.Component{Name: "recent", Category: "IC", CreatedAt: recent})

	after := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := store.ListComponents(ctx, types.ComponentFilter{CreatedAfter: &after})
	require.NoError(t, err)
	assert.Equal(t, []string{"recent"}, names(got))

	got, err = store.ListComponents(ctx, types.ComponentFilter{CreatedBefore: &after})
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, names(got))
}

func TestUpdateComponent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	c := addComponent(t, store, types.Component{Name: "LM317", Category: "IC", Quantity: 1})

	err := store.UpdateComponent(ctx, c.ID, map[string]interface{}{
		"quantity": 7,
		"storage":  "Bin 9",
		"category": "Regulator",
	})
	require.NoError(t, err)

	got, err := store.GetComponent(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Quantity)
	assert.Equal(t, "Bin 9", got.Storage)
	assert.Equal(t, "Regulator", got.Category)
	assert.Equal(t, "LM317", got.Name)
}

func TestUpdateComponentErrors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	c := addComponent(t, store, types.Component{Name: "LM317", Category: "IC"})

	err := store.UpdateComponent(ctx, c.ID, map[string]interface{}{"created_at": time.Now()})
	assert.True(t, errors.Is(err, storage.ErrInvalidField))

	err = store.UpdateComponent(ctx, c.ID, map[string]interface{}{"quantity": -1})
	assert.Error(t, err)

	err = store.UpdateComponent(ctx, 12345, map[string]interface{}{"quantity": 1})
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestDeleteComponent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	c := addComponent(t, store, types.Component{Name: "LM317", Category: "IC"})

	require.NoError(t, store.DeleteComponent(ctx, c.ID))

	_, err := store.GetComponent(ctx, c.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	err = store.DeleteComponent(ctx, c.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestExclusionsAreSymmetricAndIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	a := addComponent(t, store, types.Component{Name: "10k", Category: "Resistor"})
	b := addComponent(t, store, types.Component{Name: "10k", Category: "Resistor"})

	ok, err := store.HasExclusion(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.AddExclusion(ctx, b.ID, a.ID))
	require.NoError(t, store.AddExclusion(ctx, a.ID, b.ID))

	for _, pair := range [][2]int64{{a.ID, b.ID}, {b.ID, a.ID}} {
		ok, err := store.HasExclusion(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, ok, "expected %d/%d to be excluded", pair[0], pair[1])
	}

	pairs, err := store.ListExclusions(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, a.ID, pairs[0].Low)
	assert.Equal(t, b.ID, pairs[0].High)

	forA, err := store.ListExclusionsFor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, forA)

	forB, err := store.ListExclusionsFor(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID}, forB)
}

func TestExclusionRejectsSelfPair(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	assert.Error(t, store.AddExclusion(ctx, 1, 1))

	ok, err := store.HasExclusion(ctx, 1, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPruneExclusions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	a := addComponent(t, store, types.Component{Name: "10k", Category: "Resistor"})
	b := addComponent(t, store, types.Component{Name: "10k", Category: "Resistor"})
	c := addComponent(t, store, types.Component{Name: "10K", Category: "Resistor"})

	require.NoError(t, store.AddExclusion(ctx, a.ID, b.ID))
	require.NoError(t, store.AddExclusion(ctx, a.ID, c.ID))
	require.NoError(t, store.DeleteComponent(ctx, b.ID))

	// The orphaned row is still readable and simply never matches a live id
	forA, err := store.ListExclusionsFor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID, c.ID}, forA)

	pruned, err := store.PruneExclusions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	forA, err = store.ListExclusionsFor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{c.ID}, forA)
}

func TestMergeHistory(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first := &types.MergeRecord{
		ID: uuid.NewString(), SourceID: 2, TargetID: 1, SourceName: "atmega328p", SourceQuantity: 2,
		MergedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	second := &types.MergeRecord{
		ID: uuid.NewString(), SourceID: 5, TargetID: 4, SourceName: "10k", SourceQuantity: 50,
		MergedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.RecordMerge(ctx, first))
	require.NoError(t, store.RecordMerge(ctx, second))

	all, err := store.GetMergeHistory(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	forOne, err := store.GetMergeHistory(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, forOne, 1)
	assert.Equal(t, "atmega328p", forOne[0].SourceName)
	assert.Equal(t, 2, forOne[0].SourceQuantity)

	assert.Error(t, store.RecordMerge(ctx, &types.MergeRecord{}))
}

func TestRunInTransactionCommits(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	a := addComponent(t, store, types.Component{Name: "10k", Category: "Resistor", Quantity: 1})
	b := addComponent(t, store, types.Component{Name: "10k", Category: "Resistor", Quantity: 2})

	err := store.RunInTransaction(ctx, func(tx storage.Tx) error {
		if err := tx.UpdateComponent(ctx, a.ID, map[string]interface{}{"quantity": 3}); err != nil {
			return err
		}
		return tx.DeleteComponent(ctx, b.ID)
	})
	require.NoError(t, err)

	got, err := store.GetComponent(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)

	_, err = store.GetComponent(ctx, b.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestRunInTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	a := addComponent(t, store, types.Component{Name: "10k", Category: "Resistor", Quantity: 1})

	boom := errors.New("boom")
	err := store.RunInTransaction(ctx, func(tx storage.Tx) error {
		if err := tx.UpdateComponent(ctx, a.ID, map[string]interface{}{"quantity": 99}); err != nil {
			return err
		}
		return boom
	})
	assert.True(t, errors.Is(err, boom))

	got, err := store.GetComponent(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity, "update must be rolled back")
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "inventory.db")

	store, err := New(ctx, path)
	require.NoError(t, err)
	c := &types.Component{Name: "NE555", Category: "IC", Quantity: 10}
	require.NoError(t, store.CreateComponent(ctx, c))
	require.NoError(t, store.Close())

	reopened, err := New(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetComponent(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Quantity)
}

func names(components []*types.Component) []string {
	out := make([]string, len(components))
	for i, c := range components {
		out[i] = c.Name
	}
	return out
}
