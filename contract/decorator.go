package contract

import (
	"github.com/chainrequest/blockchain-api/utils"
)

type ContractParameter struct {
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	SolidityName     string              `json:"solidity_name"`
	SolidityType     string              `json:"solidity_type"`
	RecommendedTypes []string            `json:"recommended_types"`
	Parameters       []ContractParameter `json:"parameters,omitempty"`
	Hints            []TypeHint          `json:"hints,omitempty"`
}

type EventParameter struct {
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	Indexed          bool                `json:"indexed"`
	SolidityName     string              `json:"solidity_name"`
	SolidityType     string              `json:"solidity_type"`
	RecommendedTypes []string            `json:"recommended_types"`
	Parameters       []ContractParameter `json:"parameters,omitempty"`
	Hints            []TypeHint          `json:"hints,omitempty"`
}

type ContractConstructor struct {
	Inputs      []ContractParameter `json:"inputs"`
	Description string              `json:"description"`
	Payable     bool                `json:"payable"`
	Signature   string              `json:"signature"`
}

type ContractFunction struct {
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	SolidityName    string              `json:"solidity_name"`
	Signature       string              `json:"signature"`
	Inputs          []ContractParameter `json:"inputs"`
	Outputs         []ContractParameter `json:"outputs"`
	EmittableEvents []string            `json:"emittable_events"`
	ReadOnly        bool                `json:"read_only"`
}

type ContractEvent struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	SolidityName string           `json:"solidity_name"`
	Signature    string           `json:"signature"`
	Inputs       []EventParameter `json:"inputs"`
}

// ContractDecorator is the resolved view of a contract: every constructor and function
// decorator is tied to its abi entry, events are tied when a matching entry exists.
// Values are never mutated after construction.
type ContractDecorator struct {
	ID           ID                    `json:"id"`
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Binary       string                `json:"binary"`
	Tags         []string              `json:"tags"`
	Implements   []InterfaceID         `json:"implements"`
	Constructors []ContractConstructor `json:"constructors"`
	Functions    []ContractFunction    `json:"functions"`
	Events       []ContractEvent       `json:"events"`
	Manifest     *ManifestJSON         `json:"-"`
	Artifact     *ArtifactJSON         `json:"-"`
}

// NewContractDecorator resolves artifact and manifest into a ContractDecorator.
//
// Interfaces listed in manifest.Implements are resolved through lookup; a nil lookup
// resolves no interfaces. When the same signature is declared by both the manifest and
// an interface, the first definition wins: manifest first for hand-authored contracts,
// interface first for imported ones.
func NewContractDecorator(
	id ID,
	artifact *ArtifactJSON,
	manifest *ManifestJSON,
	imported bool,
	lookup InterfaceLookup,
) (*ContractDecorator, error) {
	interfaces, err := resolveInterfaces(manifest.Implements, lookup)
	if err != nil {
		return nil, err
	}

	interfaceFunctions := resolveOverrides(
		utils.Flatten(utils.Map(interfaces, func(i *InterfaceManifestJSON) []FunctionDecorator {
			return i.FunctionDecorators
		})...),
		func(d FunctionDecorator) string { return d.Signature },
	)
	interfaceEvents := resolveOverrides(
		utils.Flatten(utils.Map(interfaces, func(i *InterfaceManifestJSON) []EventDecorator {
			return i.EventDecorators
		})...),
		func(d EventDecorator) string { return d.Signature },
	)
	interfaceTags := utils.Flatten(utils.Map(interfaces, func(i *InterfaceManifestJSON) []string {
		return i.Tags
	})...)

	constructors, err := decorateConstructors(artifact, manifest.ConstructorDecorators)
	if err != nil {
		return nil, err
	}

	functions, err := decorateFunctions(artifact, prioritize(manifest.FunctionDecorators, interfaceFunctions, imported))
	if err != nil {
		return nil, err
	}

	events, err := decorateEvents(artifact, prioritize(manifest.EventDecorators, interfaceEvents, imported))
	if err != nil {
		return nil, err
	}

	return &ContractDecorator{
		ID:           id,
		Name:         manifest.Name,
		Description:  manifest.Description,
		Binary:       artifact.Bytecode,
		Tags:         utils.Set(utils.Flatten(manifest.Tags, interfaceTags)),
		Implements:   manifest.Implements,
		Constructors: constructors,
		Functions:    functions,
		Events:       events,
		Manifest:     manifest,
		Artifact:     artifact,
	}, nil
}

func resolveInterfaces(ids []InterfaceID, lookup InterfaceLookup) ([]*InterfaceManifestJSON, error) {
	if utils.IsNil(lookup) {
		return nil, nil
	}

	interfaces := make([]*InterfaceManifestJSON, 0, len(ids))
	for _, id := range ids {
		manifest, found := lookup.Interface(id)
		if !found {
			return nil, &InterfaceNotFoundError{ID: id}
		}
		interfaces = append(interfaces, manifest)
	}
	return interfaces, nil
}

// resolveOverrides keeps the first decorator for every signature.
func resolveOverrides[T any](decorators []T, signature func(T) string) []T {
	return utils.DistinctBy(decorators, signature)
}

// prioritize orders manifest and interface decorators so that the preferred source
// comes first; callers de-duplicate afterwards.
func prioritize[T any](manifestDecorators, interfaceDecorators []T, imported bool) []T {
	if imported {
		return utils.Flatten(interfaceDecorators, manifestDecorators)
	}
	return utils.Flatten(manifestDecorators, interfaceDecorators)
}

func decorateConstructors(artifact *ArtifactJSON, decorators []ConstructorDecorator) ([]ContractConstructor, error) {
	abiConstructors := utils.Associate(artifact.entries(EntryConstructor), constructorSignature)

	constructors := make([]ContractConstructor, 0, len(decorators))
	for _, decorator := range decorators {
		entry, found := abiConstructors[decorator.Signature]
		if !found {
			return nil, &SignatureNotFoundError{Signature: decorator.Signature}
		}
		constructors = append(constructors, ContractConstructor{
			Inputs:      inputParameters(decorator.ParameterDecorators, entry.Inputs),
			Description: decorator.Description,
			Payable:     entry.StateMutability == MutabilityPayable,
			Signature:   decorator.Signature,
		})
	}
	return constructors, nil
}

func decorateFunctions(artifact *ArtifactJSON, decorators []FunctionDecorator) ([]ContractFunction, error) {
	abiFunctions := utils.Associate(artifact.entries(EntryFunction), entrySignature)
	decorators = resolveOverrides(decorators, func(d FunctionDecorator) string { return d.Signature })

	functions := make([]ContractFunction, 0, len(decorators))
	for _, decorator := range decorators {
		entry, found := abiFunctions[decorator.Signature]
		if !found {
			return nil, &SignatureNotFoundError{Signature: decorator.Signature}
		}
		if entry.Name == "" {
			return nil, &MissingArtifactFieldError{Signature: decorator.Signature, Entry: EntryFunction, Field: "name"}
		}
		if entry.Outputs == nil {
			return nil, &MissingArtifactFieldError{Signature: decorator.Signature, Entry: EntryFunction, Field: "outputs"}
		}

		functions = append(functions, ContractFunction{
			Name:            decorator.Name,
			Description:     decorator.Description,
			SolidityName:    entry.Name,
			Signature:       decorator.Signature,
			Inputs:          inputParameters(decorator.ParameterDecorators, entry.Inputs),
			Outputs:         outputParameters(decorator.ReturnDecorators, entry.Outputs),
			EmittableEvents: decorator.EmittableEvents,
			ReadOnly: decorator.ReadOnly ||
				utils.AnyOf(entry.StateMutability, MutabilityView, MutabilityPure),
		})
	}
	return functions, nil
}

func decorateEvents(artifact *ArtifactJSON, decorators []EventDecorator) ([]ContractEvent, error) {
	abiEvents := utils.Associate(artifact.entries(EntryEvent), entrySignature)
	decorators = resolveOverrides(decorators, func(d EventDecorator) string { return d.Signature })

	events := make([]ContractEvent, 0, len(decorators))
	for _, decorator := range decorators {
		entry, found := abiEvents[decorator.Signature]
		if !found {
			continue
		}
		if entry.Name == "" {
			return nil, &MissingArtifactFieldError{Signature: decorator.Signature, Entry: EntryEvent, Field: "name"}
		}

		events = append(events, ContractEvent{
			Name:         decorator.Name,
			Description:  decorator.Description,
			SolidityName: entry.Name,
			Signature:    decorator.Signature,
			Inputs:       eventParameters(decorator.ParameterDecorators, entry.Inputs),
		})
	}
	return events, nil
}

// inputParameters pairs decorators with abi parameters by position, stopping at the
// shorter of the two lists.
func inputParameters(decorators []TypeDecorator, params []ABIParameter) []ContractParameter {
	size := min(len(decorators), len(params))
	result := make([]ContractParameter, size)
	for i := range size {
		result[i] = inputParameter(decorators[i], params[i])
	}
	return result
}

func inputParameter(decorator TypeDecorator, param ABIParameter) ContractParameter {
	var nested []ContractParameter
	if decorator.Parameters != nil {
		nested = inputParameters(decorator.Parameters, param.Components)
	}
	return ContractParameter{
		Name:             decorator.Name,
		Description:      decorator.Description,
		SolidityName:     param.Name,
		SolidityType:     param.Type,
		RecommendedTypes: decorator.RecommendedTypes,
		Parameters:       nested,
		Hints:            decorator.Hints,
	}
}

// outputParameters pairs return decorators with abi outputs by position. The shorter
// side is padded with empty values so neither list is truncated. A declared decorator
// solidity type takes precedence over the abi type.
func outputParameters(decorators []TypeDecorator, params []ABIParameter) []ContractParameter {
	size := max(len(decorators), len(params))
	result := make([]ContractParameter, size)
	for i := range size {
		var (
			decorator TypeDecorator
			param     ABIParameter
		)
		if i < len(decorators) {
			decorator = decorators[i]
		}
		if i < len(params) {
			param = params[i]
		}
		result[i] = outputParameter(decorator, param)
	}
	return result
}

func outputParameter(decorator TypeDecorator, param ABIParameter) ContractParameter {
	solidityType := decorator.SolidityType
	if solidityType == "" {
		solidityType = param.Type
	}

	var nested []ContractParameter
	if decorator.Parameters != nil || param.Components != nil {
		nested = outputParameters(decorator.Parameters, param.Components)
	}

	return ContractParameter{
		Name:             decorator.Name,
		Description:      decorator.Description,
		SolidityName:     param.Name,
		SolidityType:     solidityType,
		RecommendedTypes: decorator.RecommendedTypes,
		Parameters:       nested,
		Hints:            decorator.Hints,
	}
}

func eventParameters(decorators []TypeDecorator, params []ABIParameter) []EventParameter {
	size := min(len(decorators), len(params))
	result := make([]EventParameter, size)
	for i := range size {
		p := inputParameter(decorators[i], params[i])
		result[i] = EventParameter{
			Name:             p.Name,
			Description:      p.Description,
			Indexed:          params[i].Indexed,
			SolidityName:     p.SolidityName,
			SolidityType:     p.SolidityType,
			RecommendedTypes: p.RecommendedTypes,
			Parameters:       p.Parameters,
			Hints:            p.Hints,
		}
	}
	return result
}

// Function returns the resolved function with the given decorator signature.
func (d *ContractDecorator) Function(signature string) (*ContractFunction, bool) {
	for i := range d.Functions {
		if d.Functions[i].Signature == signature {
			return &d.Functions[i], true
		}
	}
	return nil, false
}

// Constructor returns the resolved constructor with the given decorator signature.
func (d *ContractDecorator) Constructor(signature string) (*ContractConstructor, bool) {
	for i := range d.Constructors {
		if d.Constructors[i].Signature == signature {
			return &d.Constructors[i], true
		}
	}
	return nil, false
}
