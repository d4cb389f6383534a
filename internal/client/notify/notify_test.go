package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/taskboard/internal/client/localdb"
	"github.com/dmitrijs2005/taskboard/internal/client/repositories/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPrompter struct {
	answer bool
	err    error
	calls  int
}

func (c *countingPrompter) Ask(context.Context) (bool, error) {
	c.calls++
	return c.answer, c.err
}

func newStore(t *testing.T) *metadata.SQLiteRepository {
	t.Helper()
	db, err := localdb.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return metadata.NewSQLiteRepository(db)
}

func TestTerminalNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewTerminalNotifier(&buf)
	require.True(t, n.Supported())

	require.NoError(t, n.Notify(context.Background(), Notification{Title: "⏰ Task Due Soon", Body: "soon", Tag: "t1"}))
	assert.Equal(t, "\a\n[t1] ⏰ Task Due Soon\nsoon\n", buf.String())

	assert.False(t, NewTerminalNotifier(nil).Supported())
}

func TestRequest_DefaultPromptsOnceAndPersists(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	pr := &countingPrompter{answer: true}
	p := NewPermissions(store, pr, NewTerminalNotifier(&bytes.Buffer{}))

	state, err := p.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, PermissionDefault, state)

	ok, err := p.Request(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Request(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, pr.calls)

	v, _, err := store.Get(ctx, metadata.KeyNotificationPermission)
	require.NoError(t, err)
	assert.Equal(t, "granted", v)
	assert.True(t, p.Granted(ctx))
}

func TestRequest_DeniedNeverPrompts(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Set(ctx, metadata.KeyNotificationPermission, string(PermissionDenied)))

	pr := &countingPrompter{answer: true}
	p := NewPermissions(store, pr, NewTerminalNotifier(&bytes.Buffer{}))

	ok, err := p.Request(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, pr.calls)
}

func TestRequest_UserDeclines(t *testing.T) {
	ctx := context.Background()
	pr := &countingPrompter{answer: false}
	p := NewPermissions(newStore(t), pr, NewTerminalNotifier(&bytes.Buffer{}))

	ok, err := p.Request(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _ = p.Request(ctx)
	assert.False(t, ok)
	assert.Equal(t, 1, pr.calls)

	state, _ := p.State(ctx)
	assert.Equal(t, PermissionDenied, state)
}

func TestRequest_Unsupported(t *testing.T) {
	pr := &countingPrompter{answer: true}
	p := NewPermissions(newStore(t), pr, NewTerminalNotifier(nil))

	ok, err := p.Request(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, pr.calls)
}

func TestRequest_PromptError(t *testing.T) {
	ctx := context.Background()
	p := NewPermissions(newStore(t), &countingPrompter{err: errors.New("eof")}, NewTerminalNotifier(&bytes.Buffer{}))

	ok, err := p.Request(ctx)
	assert.Error(t, err)
	assert.False(t, ok)

	state, _ := p.State(ctx)
	assert.Equal(t, PermissionDefault, state)
}

func TestShow(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	store := newStore(t)
	p := NewPermissions(store, PrompterFunc(func(context.Context) (bool, error) { return true, nil }), NewTerminalNotifier(&buf))

	shown, err := p.Show(ctx, Notification{Title: "x", Body: "y", Tag: "notification"})
	require.NoError(t, err)
	assert.False(t, shown)
	assert.Empty(t, buf.String())

	_, err = p.Request(ctx)
	require.NoError(t, err)

	shown, err = p.Show(ctx, Notification{Title: "x", Body: "y", Tag: "notification"})
	require.NoError(t, err)
	assert.True(t, shown)
	assert.Contains(t, buf.String(), "[notification] x")
}
