package core

import (
	"reflect"

	"github.com/Comcast/rove/replay"
)

// domainSeq adapts a caller-supplied domain to a replay.Seq.
//
// A *replay.Seq passes through untouched, so a caller can hand the
// same already-populated sequence to several nodes (or re-use one
// across reconstructions) without repeating the source's work.
func domainSeq(domain interface{}) *replay.Seq {
	if s, is := domain.(*replay.Seq); is {
		return s
	}
	return replay.NewSeq(domainSource(domain))
}

// domainSource adapts a caller-supplied domain to a replay.Source.
//
// Inspection is deferred until the first pull so that constructing a
// node with a bad domain doesn't fail: the InvalidDomain error
// surfaces at first consumption.
func domainSource(domain interface{}) replay.Source {
	var src replay.Source
	return func() (interface{}, bool, error) {
		if src == nil {
			var err error
			if src, err = openDomain(domain); err != nil {
				return nil, false, err
			}
		}
		return src()
	}
}

func openDomain(domain interface{}) (replay.Source, error) {
	switch vv := domain.(type) {
	case nil:
		return replay.Slice(nil), nil
	case replay.Source:
		return vv, nil
	case func() (interface{}, bool, error):
		return replay.Source(vv), nil
	case []interface{}:
		return replay.Slice(vv), nil
	case chan interface{}:
		return replay.Chan(vv), nil
	}

	v := reflect.ValueOf(domain)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		i := 0
		return func() (interface{}, bool, error) {
			if v.Len() <= i {
				return nil, false, nil
			}
			x := v.Index(i).Interface()
			i++
			return x, true, nil
		}, nil
	case reflect.Chan:
		if v.Type().ChanDir() == reflect.SendDir {
			return nil, &InvalidDomain{domain}
		}
		return func() (interface{}, bool, error) {
			x, ok := v.Recv()
			if !ok {
				return nil, false, nil
			}
			return x.Interface(), true, nil
		}, nil
	}

	return nil, &InvalidDomain{domain}
}
