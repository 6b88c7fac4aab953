package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var ErrInvalidArgument = errors.New("invalid function argument")

// FunctionArgument is a typed value supplied by clients for constructor and function
// calls. Tuple values are lists of FunctionArgument; array values are JSON lists of
// element values.
type FunctionArgument struct {
	Type  string          `json:"type" validate:"required"`
	Value json.RawMessage `json:"value"`
}

// ArgumentTypes builds the abi arguments described by the supplied values.
func ArgumentTypes(args []FunctionArgument) (abi.Arguments, error) {
	arguments := make(abi.Arguments, len(args))
	for i, arg := range args {
		m, err := argumentMarshaling(arg, fieldName("", i))
		if err != nil {
			return nil, err
		}
		t, err := abi.NewType(m.Type, "", m.Components)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %w", ErrInvalidArgument, i, err)
		}
		arguments[i] = abi.Argument{Name: m.Name, Type: t}
	}
	return arguments, nil
}

// argumentMarshaling derives tuple components from the nested argument values. Arrays
// of tuples take their components from the first element.
func argumentMarshaling(arg FunctionArgument, name string) (abi.ArgumentMarshaling, error) {
	m := abi.ArgumentMarshaling{Name: name, Type: arg.Type}
	if !isTupleType(arg.Type) {
		return m, nil
	}

	var elements []FunctionArgument
	if arg.Type == tupleType {
		if err := json.Unmarshal(arg.Value, &elements); err != nil {
			return m, fmt.Errorf("%w: tuple value: %w", ErrInvalidArgument, err)
		}
	} else {
		var items [][]FunctionArgument
		if err := json.Unmarshal(arg.Value, &items); err != nil {
			return m, fmt.Errorf("%w: tuple array value: %w", ErrInvalidArgument, err)
		}
		if len(items) == 0 {
			return m, fmt.Errorf("%w: cannot infer components of empty %s", ErrInvalidArgument, arg.Type)
		}
		elements = items[0]
	}

	m.Components = make([]abi.ArgumentMarshaling, len(elements))
	for i, element := range elements {
		component, err := argumentMarshaling(element, fieldName("", i))
		if err != nil {
			return m, err
		}
		m.Components[i] = component
	}
	return m, nil
}

// ArgumentSignature renders the decorator signature of a call with the given arguments.
func ArgumentSignature(name string, args []FunctionArgument) (string, error) {
	arguments, err := ArgumentTypes(args)
	if err != nil {
		return "", err
	}
	return Signature(name, argumentsToParameters(arguments)), nil
}

func argumentsToParameters(arguments abi.Arguments) []ABIParameter {
	params := make([]ABIParameter, len(arguments))
	for i, argument := range arguments {
		params[i] = typeToParameter(argument.Name, argument.Type)
	}
	return params
}

func typeToParameter(name string, t abi.Type) ABIParameter {
	param := ABIParameter{Name: name, Type: t.String()}
	switch t.T {
	case abi.TupleTy:
		param.Type = tupleType
		param.Components = tupleParameters(t)
	case abi.SliceTy, abi.ArrayTy:
		if base, suffix := arrayBase(t); base.T == abi.TupleTy {
			param.Type = tupleType + suffix
			param.Components = tupleParameters(base)
		}
	}
	return param
}

func tupleParameters(t abi.Type) []ABIParameter {
	params := make([]ABIParameter, len(t.TupleElems))
	for i, elem := range t.TupleElems {
		params[i] = typeToParameter(t.TupleRawNames[i], *elem)
	}
	return params
}

func arrayBase(t abi.Type) (abi.Type, string) {
	var suffix string
	for t.T == abi.SliceTy || t.T == abi.ArrayTy {
		if t.T == abi.SliceTy {
			suffix = "[]" + suffix
		} else {
			suffix = fmt.Sprintf("[%d]", t.Size) + suffix
		}
		t = *t.Elem
	}
	return t, suffix
}

// PackArguments abi-encodes the supplied values using the given argument types.
func PackArguments(arguments abi.Arguments, args []FunctionArgument) ([]byte, error) {
	if len(arguments) != len(args) {
		return nil, fmt.Errorf("%w: expected %d arguments, got %d", ErrInvalidArgument, len(arguments), len(args))
	}
	values := make([]any, len(args))
	for i, arg := range args {
		value, err := ArgumentValue(arguments[i].Type, arg.Value)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		values[i] = value
	}
	packed, err := arguments.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return packed, nil
}

// ArgumentValue converts a JSON value into the Go value expected by the abi packer
// for type t.
func ArgumentValue(t abi.Type, raw json.RawMessage) (any, error) {
	value, err := argumentValue(t, raw)
	if err != nil {
		return nil, err
	}
	return value.Interface(), nil
}

func argumentValue(t abi.Type, raw json.RawMessage) (reflect.Value, error) {
	invalid := func(err error) (reflect.Value, error) {
		return reflect.Value{}, fmt.Errorf("%w: %s: %w", ErrInvalidArgument, t.String(), err)
	}

	switch t.T {
	case abi.AddressTy:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return invalid(err)
		}
		if !common.IsHexAddress(s) {
			return invalid(fmt.Errorf("not an address: %q", s))
		}
		return reflect.ValueOf(common.HexToAddress(s)), nil
	case abi.BoolTy:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return invalid(err)
		}
		return reflect.ValueOf(b), nil
	case abi.StringTy:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return invalid(err)
		}
		return reflect.ValueOf(s), nil
	case abi.IntTy, abi.UintTy:
		n, err := parseInteger(raw)
		if err != nil {
			return invalid(err)
		}
		return integerValue(t, n)
	case abi.BytesTy:
		b, err := parseBytes(raw)
		if err != nil {
			return invalid(err)
		}
		return reflect.ValueOf(b), nil
	case abi.FixedBytesTy:
		b, err := parseBytes(raw)
		if err != nil {
			return invalid(err)
		}
		if len(b) > t.Size {
			return invalid(fmt.Errorf("expected at most %d bytes, got %d", t.Size, len(b)))
		}
		array := reflect.New(t.GetType()).Elem()
		reflect.Copy(array, reflect.ValueOf(b))
		return array, nil
	case abi.SliceTy, abi.ArrayTy:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return invalid(err)
		}
		if t.T == abi.ArrayTy && len(items) != t.Size {
			return invalid(fmt.Errorf("expected %d elements, got %d", t.Size, len(items)))
		}
		var container reflect.Value
		if t.T == abi.SliceTy {
			container = reflect.MakeSlice(t.GetType(), len(items), len(items))
		} else {
			container = reflect.New(t.GetType()).Elem()
		}
		for i, item := range items {
			elem, err := argumentValue(*t.Elem, item)
			if err != nil {
				return reflect.Value{}, err
			}
			container.Index(i).Set(elem)
		}
		return container, nil
	case abi.TupleTy:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return invalid(err)
		}
		if len(items) != len(t.TupleElems) {
			return invalid(fmt.Errorf("expected %d tuple elements, got %d", len(t.TupleElems), len(items)))
		}
		tuple := reflect.New(t.GetType()).Elem()
		for i, item := range items {
			if isArgumentObject(item) {
				var element FunctionArgument
				if err := json.Unmarshal(item, &element); err != nil {
					return invalid(err)
				}
				item = element.Value
			}
			field, err := argumentValue(*t.TupleElems[i], item)
			if err != nil {
				return reflect.Value{}, err
			}
			tuple.Field(i).Set(field)
		}
		return tuple, nil
	default:
		return invalid(errors.New("unsupported type"))
	}
}

func isArgumentObject(raw json.RawMessage) bool {
	var probe struct {
		Type  *string          `json:"type"`
		Value *json.RawMessage `json:"value"`
	}
	return json.Unmarshal(raw, &probe) == nil && probe.Type != nil && probe.Value != nil
}

// parseInteger accepts JSON numbers as well as decimal or 0x-prefixed hex strings.
func parseInteger(raw json.RawMessage) (*big.Int, error) {
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, err
		}
	}
	n, ok := new(big.Int).SetString(text, 0)
	if !ok {
		return nil, fmt.Errorf("not an integer: %s", text)
	}
	return n, nil
}

func parseBytes(raw json.RawMessage) ([]byte, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

func integerValue(t abi.Type, n *big.Int) (reflect.Value, error) {
	if t.T == abi.UintTy && n.Sign() < 0 {
		return reflect.Value{}, fmt.Errorf("%w: %s: negative value %s", ErrInvalidArgument, t.String(), n)
	}
	bits, limit := n.BitLen(), t.Size
	if t.T == abi.IntTy {
		limit--
		if n.Sign() < 0 {
			bits = new(big.Int).Not(n).BitLen()
		}
	}
	if bits > limit {
		return reflect.Value{}, fmt.Errorf("%w: %s: value %s overflows", ErrInvalidArgument, t.String(), n)
	}

	goType := t.GetType()
	switch goType.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return reflect.ValueOf(n.Uint64()).Convert(goType), nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflect.ValueOf(n.Int64()).Convert(goType), nil
	default:
		return reflect.ValueOf(n), nil
	}
}

// FormatValue converts decoded abi values into JSON friendly values: integers and
// addresses become strings, byte values become hex, tuples become ordered lists.
func FormatValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case *big.Int:
		return v.String()
	case common.Address:
		return v.Hex()
	case common.Hash:
		return v.Hex()
	case []byte:
		return hexutil.Encode(v)
	case string, bool:
		return v
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(rv.Uint()).String()
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()).String()
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			for i := range b {
				b[i] = byte(rv.Index(i).Uint())
			}
			return hexutil.Encode(b)
		}
		return formatList(rv)
	case reflect.Slice:
		return formatList(rv)
	case reflect.Struct:
		fields := make([]any, rv.NumField())
		for i := range rv.NumField() {
			fields[i] = FormatValue(rv.Field(i).Interface())
		}
		return fields
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return FormatValue(rv.Elem().Interface())
	default:
		return value
	}
}

func formatList(rv reflect.Value) []any {
	items := make([]any, rv.Len())
	for i := range rv.Len() {
		items[i] = FormatValue(rv.Index(i).Interface())
	}
	return items
}
