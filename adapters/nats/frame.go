package nats

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ekonbenefits/dynamitey-sub000/core/dyn"
	"github.com/ekonbenefits/dynamitey-sub000/core/record"
)

// HeaderCodec names the codec of a request and its response.
const HeaderCodec = "Dyn-Codec"

var ErrUnknownObject = errors.New("unknown object")

type requestFrame struct {
	ID   string      `json:"id"`
	Step record.Step `json:"step"`
}

type responseFrame struct {
	ID     string       `json:"id"`
	Value  record.Value `json:"value"`
	Err    string       `json:"err,omitempty"`
	Causes []string     `json:"causes,omitempty"`
}

// sentinels that survive the trip to the caller
var remoteCauses = map[string]error{
	"binding":   dyn.ErrBinding,
	"no_member": dyn.ErrNoMember,
	"ambiguous": dyn.ErrAmbiguousMatch,
	"shape":     dyn.ErrArgumentShape,
	"object":    ErrUnknownObject,
}

func causesOf(err error) []string {
	var out []string
	for name, sentinel := range remoteCauses {
		if errors.Is(err, sentinel) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// RemoteError is a failure reported by the responder. It unwraps to the
// dyn sentinel errors the remote failure matched.
type RemoteError struct {
	Object  string
	Message string
	Causes  []string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s: %s", e.Object, e.Message)
}

func (e *RemoteError) Unwrap() []error {
	var out []error
	for _, c := range e.Causes {
		if s, ok := remoteCauses[c]; ok {
			out = append(out, s)
		}
	}
	return out
}
