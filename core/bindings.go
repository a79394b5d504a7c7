package core

import (
	"encoding/json"
	"sort"
	"strconv"
	"sync/atomic"
)

// Id identifies a Node within the process.  An Id is assigned once,
// when the Node is constructed, and is never reused or reassigned.
type Id int64

var lastId int64

func nextId() Id {
	return Id(atomic.AddInt64(&lastId, 1))
}

func (id Id) String() string {
	return "n" + strconv.FormatInt(int64(id), 10)
}

// Bindings is a map from Node Ids to the values bound for those
// nodes along one evaluation path.
type Bindings map[Id]interface{}

func NewBindings() Bindings {
	return make(Bindings, 8)
}

// Extend returns a new Bindings with the given additional binding.
//
// The receiver is not modified.  Sibling evaluation paths share the
// receiver, so extension has to copy: once a key is set along a path
// it is only ever extended, never overwritten.
func (bs Bindings) Extend(id Id, v interface{}) Bindings {
	acc := make(Bindings, len(bs)+1)
	for k, x := range bs {
		acc[k] = x
	}
	acc[id] = v
	return acc
}

// Copy makes a shallow copy of the Bindings.
func (bs Bindings) Copy() Bindings {
	acc := make(Bindings, len(bs))
	for k, v := range bs {
		acc[k] = v
	}
	return acc
}

// Named projects the Bindings through the given tree: every bound
// node in the tree appears in the result under its display name.
//
// Handy for guards and for rendering, neither of which should have to
// know about Ids.
func (bs Bindings) Named(root Node) map[string]interface{} {
	acc := make(map[string]interface{}, len(bs))
	Walk(root, func(n Node) error {
		if v, have := bs[n.Id()]; have {
			acc[n.Name()] = v
		}
		return nil
	})
	return acc
}

// MarshalJSON renders the Bindings with string keys (in Id order) so
// that Bindings can ride along in JSON output.
func (bs Bindings) MarshalJSON() ([]byte, error) {
	ids := make([]Id, 0, len(bs))
	for id := range bs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	acc := make(map[string]interface{}, len(bs))
	for _, id := range ids {
		acc[id.String()] = bs[id]
	}
	return json.Marshal(acc)
}
