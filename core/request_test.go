package core_test

import (
	"testing"

	"github.com/chainrequest/blockchain-api/core"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRedirectURL(t *testing.T) {
	id := uuid.MustParse("6f1c2a9e-3b4d-4e5f-8a9b-0c1d2e3f4a5b")

	tests := map[string]struct {
		redirectURL string
		base        string
		want        string
	}{
		"project default": {
			base: "https://app.example.com/",
			want: "https://app.example.com/asset-send/6f1c2a9e-3b4d-4e5f-8a9b-0c1d2e3f4a5b/action",
		},
		"request url with placeholder": {
			redirectURL: "https://shop.example.com/done?request=${id}",
			base:        "https://app.example.com",
			want:        "https://shop.example.com/done?request=6f1c2a9e-3b4d-4e5f-8a9b-0c1d2e3f4a5b",
		},
		"request url without placeholder": {
			redirectURL: "https://shop.example.com/done",
			want:        "https://shop.example.com/done",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.want, core.RedirectURL(test.redirectURL, test.base, core.KindAssetSend, id))
		})
	}
}

func TestRequestKinds(t *testing.T) {
	requests := map[core.RequestKind]core.Request{
		core.KindAssetBalance:         &core.AssetBalanceRequest{},
		core.KindAssetSend:            &core.AssetSendRequest{},
		core.KindContractDeployment:   &core.ContractDeploymentRequest{},
		core.KindContractFunctionCall: &core.ContractFunctionCallRequest{},
		core.KindAuthorization:        &core.AuthorizationRequest{},
	}
	for kind, request := range requests {
		assert.Equal(t, kind, request.Kind())
		assert.NotNil(t, request.Base())
	}
}
