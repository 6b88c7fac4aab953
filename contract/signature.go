package contract

import "strings"

const tupleType = "tuple"

// TypeList renders the comma separated parameter types used in decorator signatures.
// Tuples expand to tuple(<component types>) followed by any array suffix of the tuple type.
func TypeList(params []ABIParameter) string {
	types := make([]string, len(params))
	for i, param := range params {
		types[i] = SignatureType(param)
	}
	return strings.Join(types, ",")
}

// SignatureType renders a single parameter type, e.g. tuple(uint256,address)[].
func SignatureType(param ABIParameter) string {
	if suffix, ok := strings.CutPrefix(param.Type, tupleType); ok {
		return tupleType + "(" + TypeList(param.Components) + ")" + suffix
	}
	return param.Type
}

// Signature renders name(<types>) for an abi entry.
func Signature(name string, inputs []ABIParameter) string {
	return name + "(" + TypeList(inputs) + ")"
}

func constructorSignature(entry ABIEntry) string {
	return Signature(EntryConstructor, entry.Inputs)
}

func entrySignature(entry ABIEntry) string {
	return Signature(entry.Name, entry.Inputs)
}

func isTupleType(solidityType string) bool {
	return strings.HasPrefix(solidityType, tupleType)
}
