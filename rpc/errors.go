package rpc

import (
	"errors"

	"github.com/chainrequest/blockchain-api/contract"
	"github.com/chainrequest/blockchain-api/jsonrpc"
	"github.com/chainrequest/blockchain-api/service"
	"github.com/chainrequest/blockchain-api/store"
)

var (
	ErrUnauthorized              = &jsonrpc.Error{Code: 1, Message: "Missing or invalid API key"}
	ErrProjectNotFound           = &jsonrpc.Error{Code: 2, Message: "Project not found"}
	ErrRequestNotFound           = &jsonrpc.Error{Code: 10, Message: "Request not found"}
	ErrAlreadyAttached           = &jsonrpc.Error{Code: 11, Message: "Transaction hash or signature already attached"}
	ErrWalletMismatch            = &jsonrpc.Error{Code: 12, Message: "Wallet address does not match the request"}
	ErrUnsupportedChain          = &jsonrpc.Error{Code: 13, Message: "Unsupported chain"}
	ErrMissingRedirectURL        = &jsonrpc.Error{Code: 14, Message: "Missing redirect url"}
	ErrMissingContractAddress    = &jsonrpc.Error{Code: 15, Message: "Imported contract deployments need a contract address"}
	ErrContractDecoratorNotFound = &jsonrpc.Error{Code: 20, Message: "Contract decorator not found"}
	ErrContractDecoratorExists   = &jsonrpc.Error{Code: 21, Message: "Contract decorator already exists"}
	ErrInvalidContractDecorator  = &jsonrpc.Error{Code: 22, Message: "Invalid contract decorator"}
	ErrInterfaceNotFound         = &jsonrpc.Error{Code: 23, Message: "Interface not found"}
	ErrInterfaceExists           = &jsonrpc.Error{Code: 24, Message: "Interface already exists"}
	ErrFunctionNotFound          = &jsonrpc.Error{Code: 30, Message: "Contract function not found"}
	ErrConstructorNotFound       = &jsonrpc.Error{Code: 31, Message: "Contract constructor not found"}
	ErrInvalidArgument           = &jsonrpc.Error{Code: 32, Message: "Invalid function argument"}
	ErrNotReadOnly               = &jsonrpc.Error{Code: 33, Message: "Function is not read-only"}
	ErrReadOnlyFunction          = &jsonrpc.Error{Code: 34, Message: "Read-only functions cannot be requested as transactions"}
	ErrNotPayable                = &jsonrpc.Error{Code: 35, Message: "Function or constructor is not payable"}
)

// errorMapping is checked in order; the first match wins.
var errorMapping = []struct {
	err    error
	rpcErr *jsonrpc.Error
}{
	{store.ErrUnauthorized, ErrUnauthorized},
	{store.ErrProjectNotFound, ErrProjectNotFound},
	{store.ErrRequestNotFound, ErrRequestNotFound},
	{store.ErrAlreadyAttached, ErrAlreadyAttached},
	{store.ErrDecoratorNotFound, ErrContractDecoratorNotFound},
	{store.ErrDecoratorExists, ErrContractDecoratorExists},
	{store.ErrInterfaceNotFound, ErrInterfaceNotFound},
	{store.ErrInterfaceExists, ErrInterfaceExists},
	{service.ErrWalletMismatch, ErrWalletMismatch},
	{service.ErrUnsupportedChain, ErrUnsupportedChain},
	{service.ErrMissingRedirectURL, ErrMissingRedirectURL},
	{service.ErrMissingContractAddr, ErrMissingContractAddress},
	{service.ErrReadOnlyFunction, ErrReadOnlyFunction},
	{service.ErrNotPayable, ErrNotPayable},
	{contract.ErrFunctionNotFound, ErrFunctionNotFound},
	{contract.ErrConstructorNotFound, ErrConstructorNotFound},
	{contract.ErrInvalidArgument, ErrInvalidArgument},
	{contract.ErrNotReadOnly, ErrNotReadOnly},
	{contract.ErrInterfaceNotFound, ErrInvalidContractDecorator},
	{contract.ErrSignatureNotFound, ErrInvalidContractDecorator},
	{contract.ErrMissingArtifactField, ErrInvalidContractDecorator},
	{contract.ErrMissingABI, ErrInvalidContractDecorator},
	{contract.ErrInvalidDocument, ErrInvalidContractDecorator},
}

// toRPCError maps domain errors to application errors carrying the error text.
// Anything else is logged and reported as an internal error.
func (h *Handler) toRPCError(method string, err error) *jsonrpc.Error {
	for _, mapping := range errorMapping {
		if errors.Is(err, mapping.err) {
			return mapping.rpcErr.CloneWithData(err.Error())
		}
	}
	h.log.Errorw("Request failed", "method", method, "err", err)
	return jsonrpc.Err(jsonrpc.InternalError, nil)
}
