package store_test

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/chainrequest/blockchain-api/contract"
	"github.com/chainrequest/blockchain-api/core"
	"github.com/chainrequest/blockchain-api/db/memory"
	"github.com/chainrequest/blockchain-api/store"
	"github.com/chainrequest/blockchain-api/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tokenArtifact = `{
		"contractName": "Token",
		"abi": [
			{"type": "constructor", "stateMutability": "nonpayable", "inputs": [{"name": "supply", "type": "uint256"}]},
			{"type": "function", "name": "owner", "stateMutability": "view", "inputs": [], "outputs": [{"name": "", "type": "address"}]},
			{"type": "function", "name": "transfer", "stateMutability": "nonpayable",
				"inputs": [{"name": "to", "type": "address"}, {"name": "amount", "type": "uint256"}],
				"outputs": [{"name": "", "type": "bool"}]}
		],
		"bytecode": "0x6080"
	}`
	tokenManifest = `{
		"name": "Token",
		"description": "Simple token",
		"tags": ["tags.token"],
		"implements": ["traits.ownable"],
		"constructorDecorators": [
			{"signature": "constructor(uint256)", "description": "", "parameterDecorators": [{"name": "Supply", "description": "", "recommendedTypes": []}]}
		],
		"functionDecorators": [
			{"signature": "transfer(address,uint256)", "name": "Transfer", "description": "",
				"parameterDecorators": [], "returnDecorators": [], "emittableEvents": [], "readOnly": false}
		],
		"eventDecorators": []
	}`
	ownableInterface = `{
		"name": "Ownable",
		"description": "",
		"tags": ["tags.ownable"],
		"functionDecorators": [
			{"signature": "owner()", "name": "Owner", "description": "",
				"parameterDecorators": [], "returnDecorators": [], "emittableEvents": [], "readOnly": true}
		],
		"eventDecorators": []
	}`
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(memory.New(), 16, utils.NewNopZapLogger())
	require.NoError(t, err)
	return s
}

func newProject(t *testing.T, s *store.Store) *core.Project {
	t.Helper()
	project := &core.Project{
		OwnerAddress:    common.HexToAddress("0x1111111111111111111111111111111111111111"),
		BaseRedirectURL: "https://app.example.com",
		ChainID:         11155111,
	}
	require.NoError(t, s.Projects.Create(project))
	return project
}

func TestProjects(t *testing.T) {
	s := newStore(t)
	project := newProject(t, s)
	assert.NotEqual(t, uuid.Nil, project.ID)

	loaded, err := s.Projects.ByID(project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.OwnerAddress, loaded.OwnerAddress)
	assert.Equal(t, project.ChainID, loaded.ChainID)
	assert.True(t, project.CreatedAt.Equal(loaded.CreatedAt))

	_, err = s.Projects.ByID(uuid.New())
	require.ErrorIs(t, err, store.ErrProjectNotFound)
}

func TestAPIKeys(t *testing.T) {
	s := newStore(t)
	project := newProject(t, s)

	plain, key, err := s.Projects.CreateAPIKey(project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, key.ProjectID)
	assert.Contains(t, plain, key.Prefix+".")
	assert.NotContains(t, string(key.Hash), plain)

	authenticated, err := s.Projects.ByAPIKey(plain)
	require.NoError(t, err)
	assert.Equal(t, project.ID, authenticated.ID)

	keys, err := s.Projects.ListAPIKeys(project.ID)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, key.Prefix, keys[0].Prefix)

	t.Run("rejects invalid keys", func(t *testing.T) {
		for _, invalid := range []string{"", "nodot", key.Prefix + ".wrong", "unknown.secret", "." + plain} {
			_, err := s.Projects.ByAPIKey(invalid)
			assert.ErrorIs(t, err, store.ErrUnauthorized, invalid)
		}
	})

	t.Run("unknown project", func(t *testing.T) {
		_, _, err := s.Projects.CreateAPIKey(uuid.New())
		require.ErrorIs(t, err, store.ErrProjectNotFound)
	})

	t.Run("revoked key", func(t *testing.T) {
		require.ErrorIs(t, s.Projects.DeleteAPIKey(uuid.New(), key.Prefix), store.ErrUnauthorized)
		require.NoError(t, s.Projects.DeleteAPIKey(project.ID, key.Prefix))
		_, err := s.Projects.ByAPIKey(plain)
		require.ErrorIs(t, err, store.ErrUnauthorized)
	})
}

func TestDecorators(t *testing.T) {
	s := newStore(t)

	stored := &store.StoredDecorator{
		ID:       "examples.token",
		Artifact: json.RawMessage(tokenArtifact),
		Manifest: json.RawMessage(tokenManifest),
	}

	t.Run("missing interface", func(t *testing.T) {
		_, err := s.Decorators.StoreDecorator(stored)
		require.ErrorIs(t, err, contract.ErrInterfaceNotFound)
	})

	_, err := s.Decorators.StoreInterface(&store.StoredInterface{
		ID:       "traits.ownable",
		Manifest: json.RawMessage(ownableInterface),
	})
	require.NoError(t, err)

	_, err = s.Decorators.StoreInterface(&store.StoredInterface{
		ID:       "traits.ownable",
		Manifest: json.RawMessage(ownableInterface),
	})
	require.ErrorIs(t, err, store.ErrInterfaceExists)

	decorator, err := s.Decorators.StoreDecorator(stored)
	require.NoError(t, err)
	assert.Len(t, decorator.Functions, 2)
	assert.Equal(t, []string{"tags.token", "tags.ownable"}, decorator.Tags)

	_, err = s.Decorators.StoreDecorator(stored)
	require.ErrorIs(t, err, store.ErrDecoratorExists)

	loaded, err := s.Decorators.DecoratorByID("examples.token")
	require.NoError(t, err)
	assert.Equal(t, decorator.Functions, loaded.Functions)

	t.Run("list with filters", func(t *testing.T) {
		projectID := uuid.New()
		private := &store.StoredDecorator{
			ID:        "examples.private",
			ProjectID: &projectID,
			Artifact:  json.RawMessage(tokenArtifact),
			Manifest:  json.RawMessage(`{"name": "Private", "tags": ["tags.private"]}`),
		}
		_, err := s.Decorators.StoreDecorator(private)
		require.NoError(t, err)

		all, err := s.Decorators.ListDecorators(store.DecoratorFilter{})
		require.NoError(t, err)
		assert.Equal(t, []contract.ID{"examples.token"}, ids(all))

		scoped, err := s.Decorators.ListDecorators(store.DecoratorFilter{ProjectID: &projectID})
		require.NoError(t, err)
		assert.Equal(t, []contract.ID{"examples.private", "examples.token"}, ids(scoped))

		tagged, err := s.Decorators.ListDecorators(store.DecoratorFilter{
			ProjectID: &projectID,
			Tags:      []string{"tags.token", "tags.ownable"},
		})
		require.NoError(t, err)
		assert.Equal(t, []contract.ID{"examples.token"}, ids(tagged))

		implementing, err := s.Decorators.ListDecorators(store.DecoratorFilter{
			ProjectID:  &projectID,
			Implements: []contract.InterfaceID{"traits.unknown"},
		})
		require.NoError(t, err)
		assert.Empty(t, implementing)
	})

	t.Run("interfaces", func(t *testing.T) {
		manifest, err := s.Decorators.InterfaceByID("traits.ownable")
		require.NoError(t, err)
		assert.Equal(t, "Ownable", manifest.Name)

		interfaces, err := s.Decorators.ListInterfaces()
		require.NoError(t, err)
		assert.Len(t, interfaces, 1)

		_, err = s.Decorators.InterfaceByID("traits.unknown")
		require.ErrorIs(t, err, store.ErrInterfaceNotFound)
	})

	t.Run("deleting an interface breaks dependent decorators", func(t *testing.T) {
		require.NoError(t, s.Decorators.DeleteInterface("traits.ownable"))
		require.ErrorIs(t, s.Decorators.DeleteInterface("traits.ownable"), store.ErrInterfaceNotFound)

		_, err := s.Decorators.DecoratorByID("examples.token")
		require.ErrorIs(t, err, contract.ErrInterfaceNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Decorators.DeleteDecorator("examples.token"))
		require.ErrorIs(t, s.Decorators.DeleteDecorator("examples.token"), store.ErrDecoratorNotFound)

		_, err := s.Decorators.DecoratorByID("examples.token")
		require.ErrorIs(t, err, store.ErrDecoratorNotFound)
	})
}

func ids(decorators []*contract.ContractDecorator) []contract.ID {
	return utils.Map(decorators, func(d *contract.ContractDecorator) contract.ID { return d.ID })
}

func TestRequests(t *testing.T) {
	s := newStore(t)
	project := newProject(t, s)
	other := newProject(t, s)

	recipient := common.HexToAddress("0x2222222222222222222222222222222222222222")
	var created []uuid.UUID
	for i := range 3 {
		request := &core.AssetSendRequest{
			RequestBase: core.RequestBase{
				ProjectID:     project.ID,
				ChainID:       project.ChainID,
				ArbitraryData: json.RawMessage(`{"order": 1}`),
			},
			AssetAmount:      big.NewInt(int64(i + 1)),
			RecipientAddress: recipient,
		}
		require.NoError(t, s.Sends.Create(request))
		created = append(created, request.ID)
	}
	require.NoError(t, s.Sends.Create(&core.AssetSendRequest{
		RequestBase: core.RequestBase{ProjectID: other.ID},
		AssetAmount: big.NewInt(1),
	}))

	loaded, err := s.Sends.ByID(created[0])
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), loaded.AssetAmount)
	assert.Equal(t, recipient, loaded.RecipientAddress)
	assert.JSONEq(t, `{"order": 1}`, string(loaded.ArbitraryData))
	assert.Nil(t, loaded.TxHash)

	listed, err := s.Sends.ListByProject(project.ID)
	require.NoError(t, err)
	assert.Equal(t, created, utils.Map(listed, func(r *core.AssetSendRequest) uuid.UUID { return r.ID }))

	t.Run("request kinds do not share ids", func(t *testing.T) {
		_, err := s.Balances.ByID(created[0])
		require.ErrorIs(t, err, store.ErrRequestNotFound)
	})

	t.Run("attach once", func(t *testing.T) {
		attach := func(request *core.AssetSendRequest) error {
			if request.TxHash != nil {
				return store.ErrAlreadyAttached
			}
			request.TxHash = utils.HeapPtr(common.HexToHash("0xabc"))
			return nil
		}

		updated, err := s.Sends.Update(created[1], attach)
		require.NoError(t, err)
		assert.Equal(t, common.HexToHash("0xabc"), *updated.TxHash)

		_, err = s.Sends.Update(created[1], attach)
		require.ErrorIs(t, err, store.ErrAlreadyAttached)

		_, err = s.Sends.Update(uuid.New(), attach)
		require.ErrorIs(t, err, store.ErrRequestNotFound)
	})
}
