package contract_test

import (
	"testing"

	"github.com/chainrequest/blockchain-api/contract"
	"github.com/stretchr/testify/assert"
)

func TestSignatureType(t *testing.T) {
	components := []contract.ABIParameter{
		{Name: "amount", Type: "uint256"},
		{Name: "owner", Type: "address"},
	}

	tests := map[string]struct {
		param    contract.ABIParameter
		expected string
	}{
		"plain type": {
			param:    contract.ABIParameter{Type: "uint256"},
			expected: "uint256",
		},
		"plain array": {
			param:    contract.ABIParameter{Type: "address[]"},
			expected: "address[]",
		},
		"tuple": {
			param:    contract.ABIParameter{Type: "tuple", Components: components},
			expected: "tuple(uint256,address)",
		},
		"dynamic tuple array": {
			param:    contract.ABIParameter{Type: "tuple[]", Components: components},
			expected: "tuple(uint256,address)[]",
		},
		"fixed tuple array": {
			param:    contract.ABIParameter{Type: "tuple[2]", Components: components},
			expected: "tuple(uint256,address)[2]",
		},
		"nested tuple": {
			param: contract.ABIParameter{Type: "tuple", Components: []contract.ABIParameter{
				{Type: "bool"},
				{Type: "tuple[]", Components: components},
			}},
			expected: "tuple(bool,tuple(uint256,address)[])",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expected, contract.SignatureType(test.param))
		})
	}
}

func TestSignature(t *testing.T) {
	assert.Equal(t, "getOwner()", contract.Signature("getOwner", nil))
	assert.Equal(t, "transfer(address,uint256)", contract.Signature("transfer", []contract.ABIParameter{
		{Name: "to", Type: "address"},
		{Name: "amount", Type: "uint256"},
	}))
}
