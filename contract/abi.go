package contract

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrFunctionNotFound    = errors.New("function not found in contract decorator")
	ErrConstructorNotFound = errors.New("constructor not found in contract decorator")
	ErrNotReadOnly         = errors.New("function is not read-only")
)

func abiDescriptor(param ABIParameter) TypeDescriptor {
	descriptor := TypeDescriptor{Name: param.Name, Type: param.Type}
	if isTupleType(param.Type) {
		descriptor.Elems = make([]TypeDescriptor, len(param.Components))
		for i, component := range param.Components {
			descriptor.Elems[i] = abiDescriptor(component)
		}
	}
	return descriptor
}

// resolvedDescriptor describes a resolved parameter. Tuples without decorated nested
// parameters take their components from the abi parameter, when one is known.
func resolvedDescriptor(param ContractParameter, fallback *ABIParameter) TypeDescriptor {
	descriptor := TypeDescriptor{Name: param.SolidityName, Type: param.SolidityType}
	if !isTupleType(param.SolidityType) {
		return descriptor
	}
	if len(param.Parameters) == 0 && fallback != nil {
		descriptor.Elems = abiDescriptor(*fallback).Elems
		return descriptor
	}
	descriptor.Elems = make([]TypeDescriptor, len(param.Parameters))
	for i, nested := range param.Parameters {
		var nestedFallback *ABIParameter
		if fallback != nil && i < len(fallback.Components) {
			nestedFallback = &fallback.Components[i]
		}
		descriptor.Elems[i] = resolvedDescriptor(nested, nestedFallback)
	}
	return descriptor
}

func descriptorArguments(descriptors []TypeDescriptor) (abi.Arguments, error) {
	arguments := make(abi.Arguments, len(descriptors))
	for i, descriptor := range descriptors {
		t, err := descriptor.ABIType()
		if err != nil {
			return nil, err
		}
		arguments[i] = abi.Argument{Name: fieldName(descriptor.Name, i), Type: t}
	}
	return arguments, nil
}

func abiArguments(params []ABIParameter) (abi.Arguments, error) {
	descriptors := make([]TypeDescriptor, len(params))
	for i, param := range params {
		descriptors[i] = abiDescriptor(param)
	}
	return descriptorArguments(descriptors)
}

func resolvedArguments(params []ContractParameter, fallback []ABIParameter) (abi.Arguments, error) {
	descriptors := make([]TypeDescriptor, len(params))
	for i, param := range params {
		var f *ABIParameter
		if i < len(fallback) {
			f = &fallback[i]
		}
		descriptors[i] = resolvedDescriptor(param, f)
	}
	return descriptorArguments(descriptors)
}

// ABIArguments returns the constructor inputs as abi arguments.
func (c *ContractConstructor) ABIArguments() (abi.Arguments, error) {
	return resolvedArguments(c.Inputs, nil)
}

// ABIMethod returns the function as a go-ethereum method, including its selector.
// Tuple parameters need decorated nested parameters; see ContractDecorator.Method for
// a variant which falls back to the artifact.
func (f *ContractFunction) ABIMethod() (abi.Method, error) {
	inputs, err := resolvedArguments(f.Inputs, nil)
	if err != nil {
		return abi.Method{}, fmt.Errorf("%s inputs: %w", f.Signature, err)
	}
	return f.abiMethod(inputs, nil)
}

func (f *ContractFunction) abiMethod(inputs abi.Arguments, abiOutputs []ABIParameter) (abi.Method, error) {
	outputs, err := resolvedArguments(f.Outputs, abiOutputs)
	if err != nil {
		return abi.Method{}, fmt.Errorf("%s outputs: %w", f.Signature, err)
	}

	mutability := MutabilityNonPayable
	if f.ReadOnly {
		mutability = MutabilityView
	}
	return abi.NewMethod(f.SolidityName, f.SolidityName, abi.Function, mutability, false, false, inputs, outputs), nil
}

// Method returns the go-ethereum method of a resolved function. Inputs come from the
// artifact entry, which may declare more parameters than were decorated; undecorated
// tuple outputs are completed from the artifact as well.
func (d *ContractDecorator) Method(f *ContractFunction) (abi.Method, error) {
	entry, found := d.abiEntry(EntryFunction, f.Signature)
	if !found {
		return f.ABIMethod()
	}
	inputs, err := abiArguments(entry.Inputs)
	if err != nil {
		return abi.Method{}, fmt.Errorf("%s inputs: %w", f.Signature, err)
	}
	return f.abiMethod(inputs, entry.Outputs)
}

func (d *ContractDecorator) abiEntry(entryType, signature string) (ABIEntry, bool) {
	if d.Artifact == nil {
		return ABIEntry{}, false
	}
	for _, entry := range d.Artifact.entries(entryType) {
		sig := entrySignature(entry)
		if entryType == EntryConstructor {
			sig = constructorSignature(entry)
		}
		if sig == signature {
			return entry, true
		}
	}
	return ABIEntry{}, false
}

// EncodeConstructor returns the deployment data: bytecode followed by the packed
// constructor arguments. When the decorator declares constructors, the arguments must
// match one of them.
func (d *ContractDecorator) EncodeConstructor(args []FunctionArgument) ([]byte, error) {
	arguments, err := ArgumentTypes(args)
	if err != nil {
		return nil, err
	}

	if len(d.Constructors) > 0 {
		signature := Signature(EntryConstructor, argumentsToParameters(arguments))
		if _, found := d.Constructor(signature); !found {
			return nil, fmt.Errorf("%w: %s", ErrConstructorNotFound, signature)
		}
		if entry, found := d.abiEntry(EntryConstructor, signature); found {
			if arguments, err = abiArguments(entry.Inputs); err != nil {
				return nil, err
			}
		}
	}

	packed, err := PackArguments(arguments, args)
	if err != nil {
		return nil, err
	}
	var bytecode []byte
	if d.Artifact != nil {
		bytecode = d.Artifact.BytecodeBytes()
	}
	return append(common.CopyBytes(bytecode), packed...), nil
}

// EncodeFunctionCall returns the call data for the named function: the selector followed
// by the packed arguments.
func (d *ContractDecorator) EncodeFunctionCall(solidityName string, args []FunctionArgument) ([]byte, *ContractFunction, error) {
	function, err := d.FunctionFor(solidityName, args)
	if err != nil {
		return nil, nil, err
	}
	method, err := d.Method(function)
	if err != nil {
		return nil, nil, err
	}
	packed, err := PackArguments(method.Inputs, args)
	if err != nil {
		return nil, nil, err
	}
	return append(common.CopyBytes(method.ID), packed...), function, nil
}

// DecodeFunctionOutputs unpacks the return data of a call to function.
func (d *ContractDecorator) DecodeFunctionOutputs(function *ContractFunction, data []byte) ([]any, error) {
	method, err := d.Method(function)
	if err != nil {
		return nil, err
	}
	values, err := method.Outputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s outputs: %w", function.Signature, err)
	}
	formatted := make([]any, len(values))
	for i, v := range values {
		formatted[i] = FormatValue(v)
	}
	return formatted, nil
}

// FunctionFor finds the resolved function called solidityName whose parameter types
// match the supplied arguments.
func (d *ContractDecorator) FunctionFor(solidityName string, args []FunctionArgument) (*ContractFunction, error) {
	signature, err := ArgumentSignature(solidityName, args)
	if err != nil {
		return nil, err
	}
	if function, found := d.Function(signature); found && function.SolidityName == solidityName {
		return function, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, signature)
}
