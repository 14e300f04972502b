package rawtype

// Kind identifies a BTF type's variant. Values match the kernel's
// BTF_KIND_* constants exactly, so the on-wire 5-bit kind field needs no
// translation.
type Kind uint8

const (
	KindVoid      Kind = 0 // never stored as a record; id 0 means "no type"
	KindInt       Kind = 1
	KindPtr       Kind = 2
	KindArray     Kind = 3
	KindStruct    Kind = 4
	KindUnion     Kind = 5
	KindEnum      Kind = 6
	KindFwd       Kind = 7
	KindTypedef   Kind = 8
	KindVolatile  Kind = 9
	KindConst     Kind = 10
	KindRestrict  Kind = 11
	KindFunc      Kind = 12
	KindFuncProto Kind = 13
	KindVar       Kind = 14
	KindDataSec   Kind = 15
	KindFloat     Kind = 16
	KindDeclTag   Kind = 17
	KindTypeTag   Kind = 18
	KindEnum64    Kind = 19
)

var kindNames = map[Kind]string{
	KindVoid:      "Void",
	KindInt:       "Int",
	KindPtr:       "Ptr",
	KindArray:     "Array",
	KindStruct:    "Struct",
	KindUnion:     "Union",
	KindEnum:      "Enum",
	KindFwd:       "Fwd",
	KindTypedef:   "Typedef",
	KindVolatile:  "Volatile",
	KindConst:     "Const",
	KindRestrict:  "Restrict",
	KindFunc:      "Func",
	KindFuncProto: "FuncProto",
	KindVar:       "Var",
	KindDataSec:   "DataSec",
	KindFloat:     "Float",
	KindDeclTag:   "DeclTag",
	KindTypeTag:   "TypeTag",
	KindEnum64:    "Enum64",
}

// String returns the kind's conventional BTF name, or "Unknown" for
// anything outside the known range.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether k is one of the 19 record kinds or KindVoid (which
// counts as valid even though it has no stored record).
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}
