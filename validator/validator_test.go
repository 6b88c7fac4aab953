package validator_test

import (
	"math/big"
	"testing"

	"github.com/chainrequest/blockchain-api/contract"
	"github.com/chainrequest/blockchain-api/validator"
	"github.com/stretchr/testify/assert"
)

type params struct {
	ContractID  contract.ID `validate:"required,identifier"`
	RedirectURL string      `validate:"redirect_url"`
	Amount      *big.Int    `validate:"omitempty,non_negative"`
}

func TestValidator(t *testing.T) {
	assert.Same(t, validator.Validator(), validator.Validator())

	tests := map[string]struct {
		params params
		valid  bool
	}{
		"valid": {
			params: params{ContractID: "examples.ownable", RedirectURL: "https://app.example/${id}", Amount: big.NewInt(1)},
			valid:  true,
		},
		"no redirect url or amount": {
			params: params{ContractID: "token"},
			valid:  true,
		},
		"missing id": {
			params: params{},
		},
		"uppercase id": {
			params: params{ContractID: "Examples.Ownable"},
		},
		"empty id segment": {
			params: params{ContractID: "examples..ownable"},
		},
		"redirect url scheme": {
			params: params{ContractID: "token", RedirectURL: "ftp://app.example"},
		},
		"negative amount": {
			params: params{ContractID: "token", Amount: big.NewInt(-1)},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := validator.Validator().Struct(test.params)
			if test.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
