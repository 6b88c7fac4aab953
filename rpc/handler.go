package rpc

import (
	"context"
	"math/big"

	"github.com/Masterminds/semver/v3"
	"github.com/chainrequest/blockchain-api/core"
	"github.com/chainrequest/blockchain-api/jsonrpc"
	"github.com/chainrequest/blockchain-api/service"
	"github.com/chainrequest/blockchain-api/utils"
	"github.com/ethereum/go-ethereum/common/math"
)

type Handler struct {
	service *service.Service
	log     utils.SimpleLogger
	version string
}

func New(svc *service.Service, version string, log utils.SimpleLogger) *Handler {
	return &Handler{
		service: svc,
		log:     log,
		version: version,
	}
}

type APIVersion struct {
	Version string `json:"version"`
	Major   uint64 `json:"major"`
	Minor   uint64 `json:"minor"`
	Patch   uint64 `json:"patch"`
}

// Version reports the running build. The numeric parts are zero for non-semver builds.
func (h *Handler) Version() (*APIVersion, *jsonrpc.Error) {
	result := &APIVersion{Version: h.version}
	if v, err := semver.NewVersion(h.version); err == nil {
		result.Major, result.Minor, result.Patch = v.Major(), v.Minor(), v.Patch()
	}
	return result, nil
}

// project authenticates the api key the request was sent with.
func (h *Handler) project(ctx context.Context) (*core.Project, *jsonrpc.Error) {
	key, ok := jsonrpc.APIKey(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	project, err := h.service.Authenticate(key)
	if err != nil {
		return nil, h.toRPCError("authenticate", err)
	}
	return project, nil
}

// amount converts an optional client supplied amount, rejecting negative values.
func amount(value *math.HexOrDecimal256) (*big.Int, *jsonrpc.Error) {
	if value == nil {
		return new(big.Int), nil
	}
	n := (*big.Int)(value)
	if n.Sign() < 0 {
		return nil, ErrInvalidArgument.CloneWithData("amount must not be negative")
	}
	return new(big.Int).Set(n), nil
}
