package dyn

import "fmt"

// OperationKind identifies what a call site does.
type OperationKind uint8

const (
	OpGet OperationKind = iota + 1
	OpSet
	OpGetIndex
	OpSetIndex
	OpInvokeMember
	OpInvokeMemberAction
	OpInvokeMemberUnknown
	OpConstructor
	OpAddAssign
	OpSubtractAssign
	OpIsEvent
	OpInvoke
	OpInvokeAction
	OpInvokeUnknown
	OpConvert
)

var kindNames = [...]string{
	OpGet:                 "Get",
	OpSet:                 "Set",
	OpGetIndex:            "GetIndex",
	OpSetIndex:            "SetIndex",
	OpInvokeMember:        "InvokeMember",
	OpInvokeMemberAction:  "InvokeMemberAction",
	OpInvokeMemberUnknown: "InvokeMemberUnknown",
	OpConstructor:         "Constructor",
	OpAddAssign:           "AddAssign",
	OpSubtractAssign:      "SubtractAssign",
	OpIsEvent:             "IsEvent",
	OpInvoke:              "Invoke",
	OpInvokeAction:        "InvokeAction",
	OpInvokeUnknown:       "InvokeUnknown",
	OpConvert:             "Convert",
}

func (k OperationKind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("OperationKind(%d)", uint8(k))
}

// Valid reports whether k is one of the declared kinds.
func (k OperationKind) Valid() bool {
	return k >= OpGet && k <= OpConvert
}

// Void reports whether the kind discards the member's result.
func (k OperationKind) Void() bool {
	switch k {
	case OpSetIndex, OpInvokeMemberAction, OpInvokeAction, OpAddAssign, OpSubtractAssign:
		return true
	}
	return false
}

func (k OperationKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid operation kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *OperationKind) UnmarshalText(b []byte) error {
	s := string(b)
	for i, n := range kindNames {
		if n != "" && n == s {
			*k = OperationKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown operation kind %q", s)
}
