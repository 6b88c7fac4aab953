package blockchain_test

import (
	"math/big"
	"testing"

	"github.com/chainrequest/blockchain-api/blockchain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferRoundTrip(t *testing.T) {
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	data, err := blockchain.PackTransfer(to, big.NewInt(1500))
	require.NoError(t, err)
	assert.Equal(t, "a9059cbb", common.Bytes2Hex(data[:4]))

	recipient, amount, err := blockchain.UnpackTransfer(data)
	require.NoError(t, err)
	assert.Equal(t, to, recipient)
	assert.Equal(t, big.NewInt(1500), amount)

	t.Run("other selector", func(t *testing.T) {
		_, _, err := blockchain.UnpackTransfer([]byte{1, 2, 3, 4})
		require.ErrorIs(t, err, blockchain.ErrNotTransfer)
	})

	t.Run("truncated arguments", func(t *testing.T) {
		_, _, err := blockchain.UnpackTransfer(data[:20])
		require.ErrorIs(t, err, blockchain.ErrNotTransfer)
	})
}

func TestUnpackBalance(t *testing.T) {
	balance, err := blockchain.UnpackBalance(math.U256Bytes(big.NewInt(42)))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), balance)

	_, err = blockchain.UnpackBalance([]byte{1})
	require.Error(t, err)
}
