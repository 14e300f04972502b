package rawtype

import (
	"fmt"

	"github.com/go-btf/gobtf/pkg/btf/btferr"
	"github.com/go-btf/gobtf/pkg/btf/reader"
)

// infoFields unpacks a record's info u32 into vlen, kind and kind_flag, the
// same way the teacher's TPI reader pulls a leaf kind and length out of its
// own packed record header before dispatching.
func infoFields(info uint32) (vlen int, kind Kind, kindFlag bool) {
	vlen = int(info & 0xFFFF)
	kind = Kind((info >> 24) & 0x1F)
	kindFlag = (info>>31)&1 == 1
	return
}

// Decode reads exactly one type record from r, positioned at the record's
// 12-byte common prefix, and returns the decoded variant. r is advanced past
// the full record including any vlen trailer.
func Decode(r *reader.Reader) (Type, error) {
	nameOff, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("rawtype: reading name_off: %w", err)
	}
	info, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("rawtype: reading info: %w", err)
	}
	sizeOrType, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("rawtype: reading size_or_type: %w", err)
	}

	vlen, kind, kindFlag := infoFields(info)
	base := common{nameOff: nameOff, kind: kind}

	switch kind {
	case KindInt:
		enc, err := r.U32()
		if err != nil {
			return nil, fmt.Errorf("rawtype: Int trailer: %w", err)
		}
		return Int{
			common:       base,
			EncodingBits: uint8(enc & 0xFF),
			OffsetBits:   uint8((enc >> 8) & 0xFF),
			Bits:         uint8((enc >> 16) & 0xFF),
		}, nil

	case KindPtr:
		return Ptr{chained{base, ID(sizeOrType)}}, nil

	case KindArray:
		elem, err1 := r.U32()
		idx, err2 := r.U32()
		nelems, err3 := r.U32()
		if err := firstErr(err1, err2, err3); err != nil {
			return nil, fmt.Errorf("rawtype: Array trailer: %w", err)
		}
		return Array{common: base, ElementType: ID(elem), IndexType: ID(idx), NElems: nelems}, nil

	case KindStruct, KindUnion:
		members, err := decodeMembers(r, vlen, kindFlag)
		if err != nil {
			return nil, fmt.Errorf("rawtype: %s trailer: %w", kind, err)
		}
		if kind == KindStruct {
			return Struct{common: base, Size: sizeOrType, Members: members}, nil
		}
		return Union{common: base, Size: sizeOrType, Members: members}, nil

	case KindEnum:
		values := make([]EnumValue, 0, vlen)
		for i := 0; i < vlen; i++ {
			n, err1 := r.U32()
			v, err2 := r.I32()
			if err := firstErr(err1, err2); err != nil {
				return nil, fmt.Errorf("rawtype: Enum trailer: %w", err)
			}
			values = append(values, EnumValue{NameOff: n, Value: v})
		}
		return Enum{common: base, Size: sizeOrType, Signed: kindFlag, Values: values}, nil

	case KindFwd:
		return Fwd{common: base, IsUnion: kindFlag}, nil

	case KindTypedef:
		return Typedef{chained{base, ID(sizeOrType)}}, nil
	case KindVolatile:
		return Volatile{chained{base, ID(sizeOrType)}}, nil
	case KindConst:
		return Const{chained{base, ID(sizeOrType)}}, nil
	case KindRestrict:
		return Restrict{chained{base, ID(sizeOrType)}}, nil

	case KindFunc:
		return Func{chained: chained{base, ID(sizeOrType)}, Linkage: Linkage(vlen)}, nil

	case KindFuncProto:
		params := make([]Param, 0, vlen)
		for i := 0; i < vlen; i++ {
			n, err1 := r.U32()
			t, err2 := r.U32()
			if err := firstErr(err1, err2); err != nil {
				return nil, fmt.Errorf("rawtype: FuncProto trailer: %w", err)
			}
			params = append(params, Param{NameOff: n, TypeID: ID(t)})
		}
		return FuncProto{chained: chained{base, ID(sizeOrType)}, Params: params}, nil

	case KindVar:
		linkage, err := r.U32()
		if err != nil {
			return nil, fmt.Errorf("rawtype: Var trailer: %w", err)
		}
		return Var{chained: chained{base, ID(sizeOrType)}, Linkage: Linkage(linkage)}, nil

	case KindDataSec:
		vars := make([]VarSecInfo, 0, vlen)
		for i := 0; i < vlen; i++ {
			t, err1 := r.U32()
			off, err2 := r.U32()
			sz, err3 := r.U32()
			if err := firstErr(err1, err2, err3); err != nil {
				return nil, fmt.Errorf("rawtype: DataSec trailer: %w", err)
			}
			vars = append(vars, VarSecInfo{TypeID: ID(t), Offset: off, Size: sz})
		}
		return DataSec{common: base, Size: sizeOrType, Vars: vars}, nil

	case KindFloat:
		return Float{common: base, Size: sizeOrType}, nil

	case KindDeclTag:
		idx, err := r.I32()
		if err != nil {
			return nil, fmt.Errorf("rawtype: DeclTag trailer: %w", err)
		}
		return DeclTag{chained: chained{base, ID(sizeOrType)}, ComponentIdx: idx}, nil

	case KindTypeTag:
		return TypeTag{chained{base, ID(sizeOrType)}}, nil

	case KindEnum64:
		values := make([]Enum64Value, 0, vlen)
		for i := 0; i < vlen; i++ {
			n, err1 := r.U32()
			lo, err2 := r.U32()
			hi, err3 := r.U32()
			if err := firstErr(err1, err2, err3); err != nil {
				return nil, fmt.Errorf("rawtype: Enum64 trailer: %w", err)
			}
			values = append(values, Enum64Value{NameOff: n, Lo32: lo, Hi32: hi})
		}
		return Enum64{common: base, Size: sizeOrType, Signed: kindFlag, Values: values}, nil

	default:
		return nil, fmt.Errorf("rawtype: kind %d: %w", kind, btferr.ErrUnknownKind)
	}
}

func decodeMembers(r *reader.Reader, vlen int, kindFlag bool) ([]Member, error) {
	members := make([]Member, 0, vlen)
	for i := 0; i < vlen; i++ {
		name, err1 := r.U32()
		typeID, err2 := r.U32()
		offset, err3 := r.U32()
		if err := firstErr(err1, err2, err3); err != nil {
			return nil, err
		}
		m := Member{NameOff: name, TypeID: ID(typeID)}
		if kindFlag {
			m.BitOffset = offset & 0xFFFFFF
			m.BitSize = uint8(offset >> 24)
		} else {
			m.BitOffset = offset
		}
		members = append(members, m)
	}
	return members, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// ChainedID returns the outgoing type id for kinds carrying a chained edge,
// and reports whether t has one at all. FuncProto is included: its chained
// id is its return type. Array has an edge too but addresses it through
// ElementType rather than a shared field, so it reports false here and is
// handled separately by callers that need it.
func ChainedID(t Type) (ID, bool) {
	if c, ok := t.(Chained); ok {
		return c.ChainedID(), true
	}
	return 0, false
}

// ReturnType returns the FuncProto's return type id, which is its chained
// edge under a different name.
func (f FuncProto) ReturnType() ID { return f.chained.ChainedID() }
