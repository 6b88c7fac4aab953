package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ID identifies a stored contract decorator, e.g. "openzeppelin.erc20".
type ID string

// InterfaceID identifies an interface manifest, e.g. "traits.ownable".
type InterfaceID string

const (
	EntryConstructor = "constructor"
	EntryFunction    = "function"
	EntryEvent       = "event"
	EntryFallback    = "fallback"
	EntryReceive     = "receive"
	EntryError       = "error"
)

const (
	MutabilityPure       = "pure"
	MutabilityView       = "view"
	MutabilityNonPayable = "nonpayable"
	MutabilityPayable    = "payable"
)

var ErrMissingABI = errors.New("artifact.json is missing the abi array")

// ArtifactJSON is the compiler output for a single contract.
type ArtifactJSON struct {
	ContractName     string     `json:"contractName"`
	SourceName       string     `json:"sourceName"`
	ABI              []ABIEntry `json:"abi"`
	Bytecode         string     `json:"bytecode"`
	DeployedBytecode string     `json:"deployedBytecode"`
}

// ABIEntry is one element of the abi array. Outputs is nil when the field is absent,
// which is distinct from an empty outputs list.
type ABIEntry struct {
	Type            string         `json:"type"`
	Name            string         `json:"name,omitempty"`
	Inputs          []ABIParameter `json:"inputs,omitempty"`
	Outputs         []ABIParameter `json:"outputs"`
	StateMutability string         `json:"stateMutability,omitempty"`
	Anonymous       bool           `json:"anonymous,omitempty"`
}

type ABIParameter struct {
	Name         string         `json:"name"`
	Type         string         `json:"type"`
	InternalType string         `json:"internalType,omitempty"`
	Indexed      bool           `json:"indexed,omitempty"`
	Components   []ABIParameter `json:"components,omitempty"`
}

// ParseArtifact decodes an artifact.json document.
func ParseArtifact(data []byte) (*ArtifactJSON, error) {
	var raw struct {
		ArtifactJSON
		ABI *[]ABIEntry `json:"abi"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode artifact.json: %w", ErrInvalidDocument, err)
	}
	if raw.ABI == nil {
		return nil, ErrMissingABI
	}
	artifact := raw.ArtifactJSON
	artifact.ABI = *raw.ABI
	return &artifact, nil
}

// BytecodeBytes returns the creation bytecode, accepting it with or without the 0x prefix.
func (a *ArtifactJSON) BytecodeBytes() []byte {
	code := strings.TrimSpace(a.Bytecode)
	if !strings.HasPrefix(code, "0x") {
		code = "0x" + code
	}
	return common.FromHex(code)
}

func (a *ArtifactJSON) entries(entryType string) []ABIEntry {
	var result []ABIEntry
	for _, entry := range a.ABI {
		if entry.Type == entryType {
			result = append(result, entry)
		}
	}
	return result
}
