package explorer

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"stakevault/core/events"
)

var (
	indexAlice = common.HexToAddress("0x1111111111111111111111111111111111111111")
	indexBob   = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func newTestIndexer(t *testing.T) *Indexer {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	ix, err := Open(dsn, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })

	clock := time.Unix(1_700_000_000, 0)
	ix.nowFn = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return ix
}

func TestIndexerRecordsEvents(t *testing.T) {
	ix := newTestIndexer(t)

	ix.Emit(events.ItemsStaked{
		Depositor: indexAlice,
		ItemIDs:   []uint64{1, 2},
		Rates:     []*big.Int{big.NewInt(100_000), big.NewInt(100_000)},
	})
	ix.Emit(events.RewardsClaimed{
		Depositor: indexAlice,
		Accrued:   big.NewInt(200_000),
		Paid:      big.NewInt(200_000),
	})
	ix.Emit(events.ItemsStaked{
		Depositor: indexBob,
		ItemIDs:   []uint64{7},
		Rates:     []*big.Int{big.NewInt(50_000)},
	})

	all, err := ix.Events("", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	staked, err := ix.Events(events.TypeItemsStaked, 0)
	require.NoError(t, err)
	require.Len(t, staked, 2)

	var attrs map[string]string
	require.NoError(t, json.Unmarshal([]byte(staked[0].Attributes), &attrs))
	require.Contains(t, attrs, "items")

	aliceRows, err := ix.DepositorEvents(indexAlice.Hex(), 0)
	require.NoError(t, err)
	require.Len(t, aliceRows, 2)
	require.Equal(t, events.TypeRewardsClaimed, aliceRows[0].Type)
}

func TestIndexerAPI(t *testing.T) {
	ix := newTestIndexer(t)
	ix.Emit(events.DepositsPaused{})
	ix.Emit(events.ItemsStaked{
		Depositor: indexAlice,
		ItemIDs:   []uint64{3},
		Rates:     []*big.Int{big.NewInt(100_000)},
	})

	server := httptest.NewServer(ix.Router())
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(server.URL + "/v1/events?type=" + events.TypeItemsStaked)
	require.NoError(t, err)
	defer resp.Body.Close()
	var rows []eventView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 1)
	require.Equal(t, indexAlice.Hex(), rows[0].Depositor)
	require.Equal(t, "Items staked", rows[0].Label)

	resp, err = http.Get(server.URL + "/v1/depositors/" + indexAlice.Hex() + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	rows = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 1)
}
