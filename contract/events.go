package contract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// TypeDescriptor is the decoding shape of a Solidity type. Tuples carry their element
// descriptors; every other type is described by its name alone.
type TypeDescriptor struct {
	Name  string
	Type  string
	Elems []TypeDescriptor
}

// MarshalJSON renders tuples as {"type":"tuple...","elems":[...]} and other types as a
// bare string.
func (t TypeDescriptor) MarshalJSON() ([]byte, error) {
	if !isTupleType(t.Type) {
		return json.Marshal(t.Type)
	}
	elems := t.Elems
	if elems == nil {
		elems = []TypeDescriptor{}
	}
	return json.Marshal(struct {
		Type  string           `json:"type"`
		Elems []TypeDescriptor `json:"elems"`
	}{Type: t.Type, Elems: elems})
}

func (t *TypeDescriptor) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*t = TypeDescriptor{Type: plain}
		return nil
	}

	var tuple struct {
		Type  string           `json:"type"`
		Elems []TypeDescriptor `json:"elems"`
	}
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	*t = TypeDescriptor{Type: tuple.Type, Elems: tuple.Elems}
	return nil
}

func (t TypeDescriptor) String() string {
	b, err := t.MarshalJSON()
	if err != nil {
		return t.Type
	}
	return string(b)
}

// ArgumentMarshaling converts the descriptor into the go-ethereum abi representation.
func (t TypeDescriptor) ArgumentMarshaling(name string) abi.ArgumentMarshaling {
	components := make([]abi.ArgumentMarshaling, len(t.Elems))
	for i, elem := range t.Elems {
		components[i] = elem.ArgumentMarshaling(fieldName(elem.Name, i))
	}
	return abi.ArgumentMarshaling{Name: name, Type: t.Type, Components: components}
}

// ABIType converts the descriptor into a go-ethereum abi.Type.
func (t TypeDescriptor) ABIType() (abi.Type, error) {
	m := t.ArgumentMarshaling(t.Name)
	abiType, err := abi.NewType(m.Type, "", m.Components)
	if err != nil {
		return abi.Type{}, fmt.Errorf("type %s: %w", t, err)
	}
	return abiType, nil
}

func parameterDescriptor(name, solidityType string, nested []ContractParameter) TypeDescriptor {
	descriptor := TypeDescriptor{Name: name, Type: solidityType}
	if isTupleType(solidityType) {
		descriptor.Elems = make([]TypeDescriptor, len(nested))
		for i, p := range nested {
			descriptor.Elems[i] = parameterDescriptor(p.SolidityName, p.SolidityType, p.Parameters)
		}
	}
	return descriptor
}

func fieldName(name string, index int) string {
	if name == "" {
		return fmt.Sprintf("field%d", index)
	}
	return name
}

// DeserializableEventInput is one event input. Position is its index in the abi
// inputs, since decorator names are neither required nor unique.
type DeserializableEventInput struct {
	Name     string         `json:"name"`
	Position int            `json:"position"`
	Type     TypeDescriptor `json:"type"`
}

// DeserializableEvent describes how to decode the logs of an event. Indexed inputs come
// from topics, regular inputs from log data; InputsOrder keeps the abi order of both.
type DeserializableEvent struct {
	Name          string                     `json:"name"`
	SolidityName  string                     `json:"solidity_name"`
	Signature     string                     `json:"signature"`
	InputsOrder   []string                   `json:"inputs_order"`
	IndexedInputs []DeserializableEventInput `json:"indexed_inputs"`
	RegularInputs []DeserializableEventInput `json:"regular_inputs"`
}

// DeserializableEvents converts every resolved event into its decoding descriptor.
func (d *ContractDecorator) DeserializableEvents() []DeserializableEvent {
	events := make([]DeserializableEvent, len(d.Events))
	for i, event := range d.Events {
		events[i] = event.Deserializable()
	}
	return events
}

func (e *ContractEvent) Deserializable() DeserializableEvent {
	event := DeserializableEvent{
		Name:          e.Name,
		SolidityName:  e.SolidityName,
		Signature:     e.Signature,
		InputsOrder:   make([]string, len(e.Inputs)),
		IndexedInputs: []DeserializableEventInput{},
		RegularInputs: []DeserializableEventInput{},
	}
	for i, input := range e.Inputs {
		event.InputsOrder[i] = input.Name
		deserializable := DeserializableEventInput{
			Name:     input.Name,
			Position: i,
			Type: parameterDescriptor(input.SolidityName, input.SolidityType, input.Parameters),
		}
		if input.Indexed {
			event.IndexedInputs = append(event.IndexedInputs, deserializable)
		} else {
			event.RegularInputs = append(event.RegularInputs, deserializable)
		}
	}
	return event
}

// ABIEvent builds the go-ethereum event, including its topic id.
func (e *DeserializableEvent) ABIEvent() (abi.Event, error) {
	type slot struct {
		input   DeserializableEventInput
		indexed bool
		set     bool
	}
	slots := make([]slot, len(e.InputsOrder))
	place := func(input DeserializableEventInput, indexed bool) error {
		if input.Position < 0 || input.Position >= len(slots) {
			return fmt.Errorf("event %s: input %q position %d out of range", e.Signature, input.Name, input.Position)
		}
		if slots[input.Position].set {
			return fmt.Errorf("event %s: duplicate input position %d", e.Signature, input.Position)
		}
		slots[input.Position] = slot{input: input, indexed: indexed, set: true}
		return nil
	}
	for _, input := range e.IndexedInputs {
		if err := place(input, true); err != nil {
			return abi.Event{}, err
		}
	}
	for _, input := range e.RegularInputs {
		if err := place(input, false); err != nil {
			return abi.Event{}, err
		}
	}

	inputs := make(abi.Arguments, len(slots))
	for i, slot := range slots {
		if !slot.set {
			return abi.Event{}, fmt.Errorf("event %s: missing input at position %d", e.Signature, i)
		}
		abiType, err := slot.input.Type.ABIType()
		if err != nil {
			return abi.Event{}, fmt.Errorf("event %s: %w", e.Signature, err)
		}
		inputs[i] = abi.Argument{Name: fieldName(slot.input.Name, i), Type: abiType, Indexed: slot.indexed}
	}

	return abi.NewEvent(e.SolidityName, e.SolidityName, false, inputs), nil
}

type DecodedEventParameter struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type DecodedEvent struct {
	Name      string                  `json:"name"`
	Signature string                  `json:"signature"`
	Address   common.Address          `json:"address"`
	LogIndex  uint                    `json:"log_index"`
	Arguments []DecodedEventParameter `json:"arguments"`
}

// DecodeLogs decodes every log whose first topic matches one of the given events.
// Logs of unknown events are skipped.
func DecodeLogs(events []DeserializableEvent, logs []*types.Log) ([]DecodedEvent, error) {
	type known struct {
		descriptor DeserializableEvent
		event      abi.Event
	}
	byTopic := make(map[common.Hash]known, len(events))
	for _, descriptor := range events {
		event, err := descriptor.ABIEvent()
		if err != nil {
			return nil, err
		}
		if _, exists := byTopic[event.ID]; !exists {
			byTopic[event.ID] = known{descriptor: descriptor, event: event}
		}
	}

	decoded := make([]DecodedEvent, 0, len(logs))
	for _, log := range logs {
		if log == nil || len(log.Topics) == 0 {
			continue
		}
		match, found := byTopic[log.Topics[0]]
		if !found {
			continue
		}
		arguments, err := decodeLog(match.event, log)
		if err != nil {
			return nil, fmt.Errorf("decode %s log %d: %w", match.descriptor.Signature, log.Index, err)
		}
		decoded = append(decoded, DecodedEvent{
			Name:      match.descriptor.Name,
			Signature: match.descriptor.Signature,
			Address:   log.Address,
			LogIndex:  log.Index,
			Arguments: arguments,
		})
	}
	return decoded, nil
}

func decodeLog(event abi.Event, log *types.Log) ([]DecodedEventParameter, error) {
	values, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return nil, err
	}

	topics := log.Topics[1:]
	arguments := make([]DecodedEventParameter, 0, len(event.Inputs))
	var regular, topic int
	for _, input := range event.Inputs {
		var value any
		if input.Indexed {
			if topic >= len(topics) {
				return nil, fmt.Errorf("missing topic for %s", input.Name)
			}
			value, err = topicValue(input, topics[topic])
			if err != nil {
				return nil, err
			}
			topic++
		} else {
			value = values[regular]
			regular++
		}
		arguments = append(arguments, DecodedEventParameter{Name: input.Name, Value: FormatValue(value)})
	}
	return arguments, nil
}

// topicValue decodes a single indexed argument. Dynamic types are only available as
// their keccak hash.
func topicValue(input abi.Argument, topic common.Hash) (any, error) {
	switch input.Type.T {
	case abi.StringTy, abi.BytesTy, abi.SliceTy, abi.ArrayTy, abi.TupleTy:
		return topic, nil
	}
	out := make(map[string]any, 1)
	if err := abi.ParseTopicsIntoMap(out, abi.Arguments{input}, []common.Hash{topic}); err != nil {
		return nil, err
	}
	return out[input.Name], nil
}

// EventTopic returns the keccak hash of the canonical Solidity signature of an event,
// with tuples written as parenthesised component lists.
func EventTopic(name string, inputs []ABIParameter) common.Hash {
	types := make([]string, len(inputs))
	for i, input := range inputs {
		types[i] = canonicalType(input)
	}
	return crypto.Keccak256Hash([]byte(name + "(" + strings.Join(types, ",") + ")"))
}

func canonicalType(param ABIParameter) string {
	if suffix, ok := strings.CutPrefix(param.Type, tupleType); ok {
		types := make([]string, len(param.Components))
		for i, c := range param.Components {
			types[i] = canonicalType(c)
		}
		return "(" + strings.Join(types, ",") + ")" + suffix
	}
	return param.Type
}
