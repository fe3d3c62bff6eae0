// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Leaf is the interface that custom parts built using reflection must
// implement. See MakePart.
//
type Leaf interface {
	Update() error
}

var busType = reflect.TypeOf((*Bus)(nil))

type field struct {
	index int
	port  string
	input bool
}

// MakePart wraps a Leaf into a part spec. Input/output ports are identified
// by field tags.
//
// The field tag must be `hw:"in"` or `hw:"out"` to identify input and output
// ports. By default, the port name is the field name in lowercase. A specific
// port name can be forced by adding it in the tag: `hw:"in,port_name"`. A
// third tag value sets a fixed port width: `hw:"in,sel,1"`.
//
// Port fields must be of type *Bus. They are set to the internal buses of the
// part before Update is first called.
//
// MakePart panics if t is not a struct or a pointer to a struct or if a tag
// is malformed.
//
func MakePart(t Leaf) *PartSpec {
	typ := reflect.TypeOf(t)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if k := typ.Kind(); k != reflect.Struct {
		panic(errors.Errorf("unsupported type %q for %q", k, typ.Name()))
	}

	sp := &PartSpec{
		Name:   strings.ToUpper(typ.Name()),
		Widths: make(map[string]int),
	}

	var fields []field
	n := typ.NumField()
	for i := 0; i < n; i++ {
		f := typ.Field(i)
		tag, ok := f.Tag.Lookup("hw")
		if !ok {
			continue
		}
		fd := field{index: i, port: strings.ToLower(f.Name)}
		tv := strings.Split(tag, ",")
		switch tv[0] {
		case "in":
			fd.input = true
		case "out":
		default:
			panic(errors.Errorf("unsupported tag %q for field %q in %q", tag, f.Name, typ.Name()))
		}
		if len(tv) > 1 && tv[1] != "" {
			fd.port = tv[1]
		}
		if len(tv) > 2 {
			w, err := strconv.Atoi(tv[2])
			if err != nil || w <= 0 {
				panic(errors.Errorf("invalid width in tag %q for field %q in %q", tag, f.Name, typ.Name()))
			}
			sp.Widths[fd.port] = w
		}
		if len(tv) > 3 {
			panic(errors.Errorf("unsupported tag %q for field %q in %q", tag, f.Name, typ.Name()))
		}
		if f.PkgPath != "" {
			panic(errors.Errorf("unexported port field %q in %q", f.Name, typ.Name()))
		}
		if f.Type != busType {
			panic(errors.Errorf("unsupported type %q for field %q in %q", f.Type, f.Name, typ.Name()))
		}
		if sp.isPort(fd.port) {
			panic(errors.Errorf("duplicate port %q in %q", fd.port, typ.Name()))
		}
		if fd.input {
			sp.Inputs = append(sp.Inputs, fd.port)
		} else {
			sp.Outputs = append(sp.Outputs, fd.port)
		}
		fields = append(fields, fd)
	}
	sp.Make = makeLeaf(typ, fields)
	return sp
}

func makeLeaf(typ reflect.Type, fields []field) MakeFn {
	return func(s *Socket) (UpdateFn, error) {
		v := reflect.New(typ)
		e := v.Elem()
		for _, f := range fields {
			var b *Bus
			if f.input {
				b = s.Input(f.port)
			} else {
				b = s.Output(f.port)
			}
			e.Field(f.index).Set(reflect.ValueOf(b))
		}
		return v.Interface().(Leaf).Update, nil
	}
}
