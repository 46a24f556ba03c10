package review

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/steveyegge/partsbin/internal/deduplication"
	"github.com/steveyegge/partsbin/internal/storage"
	"github.com/steveyegge/partsbin/internal/storage/sqlite"
	"github.com/steveyegge/partsbin/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSession(t *testing.T, components ...types.Component) (*Session, storage.Storage, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true

	ctx := context.Background()
	store, err := sqlite.New(ctx, filepath.Join(t.TempDir(), "review.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	for i := range components {
		require.NoError(t, store.CreateComponent(ctx, &components[i]))
	}

	engine, err := deduplication.NewEngine(store, deduplication.DefaultConfig(), nil)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	s, err := New(&Config{Store: store, Engine: engine, Out: out})
	require.NoError(t, err)
	return s, store, out
}

// resistors returns two duplicates and one unrelated part. Listing orders by
// name byte-wise, so "10K..." (id 1) is reviewed before "10k..." (id 2).
func resistors() []types.Component {
	return []types.Component{
		{Name: "10K resistor", Category: "Resistor", Quantity: 10, Specifications: "1/4W"},
		{Name: "10k resistor ", Category: "Resistor", Quantity: 5, Storage: "Drawer 2"},
		{Name: "LM7805", Category: "IC", Quantity: 2},
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(&Config{})
	require.Error(t, err)

	s, store, _ := setupSession(t)
	_, err = New(&Config{Store: store})
	require.Error(t, err)
	assert.NotNil(t, s)
}

func TestStartWithNothingFlagged(t *testing.T) {
	s, _, out := setupSession(t, types.Component{Name: "LM7805", Category: "IC", Quantity: 1})

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Done())
	assert.Nil(t, s.Current())
	assert.Contains(t, out.String(), "No more probable duplicates.")
}

func TestStartShowsFirstFlagged(t *testing.T) {
	s, _, out := setupSession(t, resistors()...)

	require.NoError(t, s.Start(context.Background()))
	require.NotNil(t, s.Current())
	assert.Equal(t, int64(1), s.Current().ID)
	require.Len(t, s.Candidates(), 1)
	assert.Equal(t, int64(2), s.Candidates()[0].ID)
	assert.Contains(t, out.String(), "2 component(s) flagged")
	assert.Contains(t, out.String(), "merge preview: qty 15")
}

func TestMergeCandidateIntoCurrent(t *testing.T) {
	ctx := context.Background()
	s, store, _ := setupSession(t, resistors()...)
	require.NoError(t, s.Start(ctx))

	err := s.HandleLine(ctx, "merge 2")
	assert.Equal(t, io.EOF, err, "queue is exhausted once the only pair is merged")
	assert.True(t, s.Done())

	merged, err := store.GetComponent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 15, merged.Quantity)
	assert.Equal(t, "Drawer 2", merged.Storage)

	_, err = store.GetComponent(ctx, 2)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMergeCurrentIntoCandidate(t *testing.T) {
	ctx := context.Background()
	s, store, _ := setupSession(t, resistors()...)
	require.NoError(t, s.Start(ctx))

	err := s.HandleLine(ctx, "into 2")
	assert.Equal(t, io.EOF, err)

	merged, err := store.GetComponent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "10k resistor ", merged.Name)
	assert.Equal(t, 15, merged.Quantity)

	_, err = store.GetComponent(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNotSimilarSuppressesPair(t *testing.T) {
	ctx := context.Background()
	s, store, out := setupSession(t, resistors()...)
	require.NoError(t, s.Start(ctx))

	err := s.HandleLine(ctx, "not 2")
	assert.Equal(t, io.EOF, err)
	assert.Contains(t, out.String(), "Merged 0, marked not similar 1.")

	suppressed, err := store.HasExclusion(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, suppressed)
}

func TestSkipMovesToNextFlagged(t *testing.T) {
	ctx := context.Background()
	s, _, _ := setupSession(t, resistors()...)
	require.NoError(t, s.Start(ctx))

	require.NoError(t, s.HandleLine(ctx, "skip"))
	require.NotNil(t, s.Current())
	assert.Equal(t, int64(2), s.Current().ID)

	assert.Equal(t, io.EOF, s.HandleLine(ctx, "skip"))
	assert.True(t, s.Done())
}

func TestRejectsNonCandidate(t *testing.T) {
	ctx := context.Background()
	s, store, _ := setupSession(t, resistors()...)
	require.NoError(t, s.Start(ctx))
	require.NotNil(t, s.Current())

	current := s.Current().ID
	tests := []string{
		"merge 3",
		"merge",
		"merge abc",
		fmt.Sprintf("into %d", current),
		fmt.Sprintf("not %d", current),
		"not 99",
	}
	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			err := s.HandleLine(ctx, line)
			require.Error(t, err)
			assert.NotEqual(t, io.EOF, err)
			assert.False(t, s.Done())
			assert.Equal(t, current, s.Current().ID)
		})
	}

	all, err := store.ListComponents(ctx, types.ComponentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCommandsAfterFinish(t *testing.T) {
	ctx := context.Background()
	s, store, _ := setupSession(t, resistors()...)
	require.NoError(t, s.Start(ctx))

	other := s.Candidates()[0].ID
	require.Equal(t, io.EOF, s.HandleLine(ctx, fmt.Sprintf("into %d", other)))
	require.True(t, s.Done())
	require.Nil(t, s.Current())

	for _, line := range []string{"merge 1", "into 2", "not 99", "skip"} {
		t.Run(line, func(t *testing.T) {
			assert.ErrorIs(t, s.HandleLine(ctx, line), ErrFinished)
		})
	}

	assert.NoError(t, s.HandleLine(ctx, "help"))
	assert.Equal(t, io.EOF, s.HandleLine(ctx, "quit"))

	all, err := store.ListComponents(ctx, types.ComponentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCommandsBeforeStart(t *testing.T) {
	s, _, _ := setupSession(t, resistors()...)
	assert.ErrorIs(t, s.HandleLine(context.Background(), "merge 2"), ErrFinished)
}

func TestUnknownAndEmptyCommands(t *testing.T) {
	ctx := context.Background()
	s, _, out := setupSession(t, resistors()...)
	require.NoError(t, s.Start(ctx))

	assert.NoError(t, s.HandleLine(ctx, "   "))
	assert.Error(t, s.HandleLine(ctx, "frobnicate"))

	require.NoError(t, s.HandleLine(ctx, "help"))
	assert.Contains(t, out.String(), "Available Commands:")

	assert.Equal(t, io.EOF, s.HandleLine(ctx, "QUIT"))
}

func TestQueueSkipsComponentsMergedAway(t *testing.T) {
	ctx := context.Background()
	s, store, _ := setupSession(t,
		types.Component{Name: "NE555", Category: "IC", Quantity: 1},
		types.Component{Name: "ne555", Category: "IC", Quantity: 2},
		types.Component{Name: "NE555 ", Category: "IC", Quantity: 3},
	)
	require.NoError(t, s.Start(ctx))
	require.Len(t, s.Candidates(), 2)

	require.NoError(t, s.HandleLine(ctx, "merge 2"))
	assert.Equal(t, int64(1), s.Current().ID, "stays on the target while candidates remain")

	assert.Equal(t, io.EOF, s.HandleLine(ctx, "merge 3"))

	merged, err := store.GetComponent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, merged.Quantity)
}
