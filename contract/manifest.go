package contract

import (
	"encoding/json"
	"fmt"
)

// ManifestJSON holds the hand-authored decorations for a contract.
type ManifestJSON struct {
	Name                  string                 `json:"name,omitempty"`
	Description           string                 `json:"description,omitempty"`
	Tags                  []string               `json:"tags"`
	Implements            []InterfaceID          `json:"implements"`
	EventDecorators       []EventDecorator       `json:"eventDecorators"`
	ConstructorDecorators []ConstructorDecorator `json:"constructorDecorators"`
	FunctionDecorators    []FunctionDecorator    `json:"functionDecorators"`
}

// InterfaceManifestJSON is a reusable bundle of decorators which contracts may implement.
type InterfaceManifestJSON struct {
	Name               string              `json:"name,omitempty"`
	Description        string              `json:"description,omitempty"`
	Tags               []string            `json:"tags"`
	EventDecorators    []EventDecorator    `json:"eventDecorators"`
	FunctionDecorators []FunctionDecorator `json:"functionDecorators"`
}

type TypeHint struct {
	Value       string `json:"value"`
	Description string `json:"description"`
}

type TypeDecorator struct {
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	SolidityType     string          `json:"solidityType,omitempty"`
	RecommendedTypes []string        `json:"recommendedTypes"`
	Parameters       []TypeDecorator `json:"parameters,omitempty"`
	Hints            []TypeHint      `json:"hints,omitempty"`
}

type ConstructorDecorator struct {
	Signature           string          `json:"signature"`
	Description         string          `json:"description"`
	ParameterDecorators []TypeDecorator `json:"parameterDecorators"`
}

type FunctionDecorator struct {
	Signature           string          `json:"signature"`
	Name                string          `json:"name"`
	Description         string          `json:"description"`
	ParameterDecorators []TypeDecorator `json:"parameterDecorators"`
	ReturnDecorators    []TypeDecorator `json:"returnDecorators"`
	EmittableEvents     []string        `json:"emittableEvents"`
	ReadOnly            bool            `json:"readOnly"`
}

type EventDecorator struct {
	Signature           string          `json:"signature"`
	Name                string          `json:"name"`
	Description         string          `json:"description"`
	ParameterDecorators []TypeDecorator `json:"parameterDecorators"`
}

func ParseManifest(data []byte) (*ManifestJSON, error) {
	manifest := new(ManifestJSON)
	if err := json.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("%w: decode manifest.json: %w", ErrInvalidDocument, err)
	}
	return manifest, nil
}

func ParseInterfaceManifest(data []byte) (*InterfaceManifestJSON, error) {
	manifest := new(InterfaceManifestJSON)
	if err := json.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("%w: decode interface manifest: %w", ErrInvalidDocument, err)
	}
	return manifest, nil
}

// InterfaceLookup resolves interface manifests by id.
type InterfaceLookup interface {
	Interface(id InterfaceID) (*InterfaceManifestJSON, bool)
}

// InterfaceLookupFunc adapts a plain function to InterfaceLookup.
type InterfaceLookupFunc func(id InterfaceID) (*InterfaceManifestJSON, bool)

func (f InterfaceLookupFunc) Interface(id InterfaceID) (*InterfaceManifestJSON, bool) {
	return f(id)
}

// InterfaceMap is an InterfaceLookup over preloaded manifests.
type InterfaceMap map[InterfaceID]*InterfaceManifestJSON

func (m InterfaceMap) Interface(id InterfaceID) (*InterfaceManifestJSON, bool) {
	manifest, ok := m[id]
	return manifest, ok && manifest != nil
}
