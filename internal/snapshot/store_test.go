package snapshot

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/dispatchd/testutil"
	"github.com/BaSui01/dispatchd/types"
)

func setupTestStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	config := DefaultConfig()
	config.Enabled = true
	config.Addr = mr.Addr()

	store, err := NewStore(config, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return mr, store
}

func testInventory() []types.Extension {
	return []types.Extension{
		{
			Name:          "Tokens",
			DescriptorURI: "ipfs://tokens-v1",
			Handler:       types.HandlerRef{19: 0x01},
			Operations: []types.Operation{
				{
					ID:        types.DeriveOperationID("transfer(address,uint256)"),
					Signature: "transfer(address,uint256)",
				},
			},
		},
	}
}

func TestNewStore_ConnectFailure(t *testing.T) {
	config := DefaultConfig()
	config.Addr = "127.0.0.1:1" // nothing listens here
	config.DialTimeout = 500 * time.Millisecond

	_, err := NewStore(config, zap.NewNop())
	assert.Error(t, err)
}

func TestStore_SaveAndLoad(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := testutil.TestContext(t)

	rev, err := store.Save(ctx, testInventory())
	require.NoError(t, err)
	assert.NotEmpty(t, rev)

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, rev, snap.Revision)
	require.Len(t, snap.Extensions, 1)
	assert.Equal(t, "Tokens", snap.Extensions[0].Name)
	assert.Equal(t, testInventory()[0].Operations, snap.Extensions[0].Operations)
}

func TestStore_SaveOverwritesRevision(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := testutil.TestContext(t)

	rev1, err := store.Save(ctx, testInventory())
	require.NoError(t, err)

	rev2, err := store.Save(ctx, nil)
	require.NoError(t, err)
	assert.NotEqual(t, rev1, rev2)

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, rev2, snap.Revision)
	assert.Empty(t, snap.Extensions)
}

func TestStore_Ping(t *testing.T) {
	mr, store := setupTestStore(t)

	require.NoError(t, store.Ping(testutil.TestContext(t)))

	mr.Close()
	assert.Error(t, store.Ping(testutil.TestContext(t)))
}

func TestStore_LoadEmpty(t *testing.T) {
	_, store := setupTestStore(t)

	snap, err := store.Load(testutil.TestContext(t))
	require.NoError(t, err)
	assert.Nil(t, snap)
}
