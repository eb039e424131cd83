package value

// ObjType is the closed set of heap object kinds the collector knows how to
// blacken and free.
type ObjType uint8

const (
	TString ObjType = iota
	TList
	TMap
	TRange
	TScript
	TFunction
	TFiber
	TUser
)

func (t ObjType) String() string {
	switch t {
	case TString:
		return "string"
	case TList:
		return "list"
	case TMap:
		return "map"
	case TRange:
		return "range"
	case TScript:
		return "script"
	case TFunction:
		return "function"
	case TFiber:
		return "fiber"
	case TUser:
		return "user"
	default:
		return "unknown"
	}
}

// Header is the common prefix every heap object carries: its type
// discriminant, the tri-color mark bit used by the collector, and the
// intrusive next-pointer linking every live object into the VM's sweep
// list. Concrete object types embed Header as their first field and expose
// it through Head, satisfying Obj.
type Header struct {
	Type   ObjType
	Marked bool
	Next   Obj // next object on the sweep list, or nil at the tail
}

func (h *Header) Head() *Header { return h }

func objString(o Obj) string {
	switch v := o.(type) {
	case *String:
		return string(v.Data)
	case *List:
		return "[list]"
	case *Map:
		return "[map]"
	case *Range:
		return formatNumber(v.From) + ".." + formatNumber(v.To)
	}
	// Scripts, functions and fibers are defined outside this package, so
	// they are told apart by their header's type tag.
	switch o.Head().Type {
	case TScript:
		return "[script]"
	case TFunction:
		if n, ok := o.(interface{ Name() string }); ok {
			return "[function " + n.Name() + "]"
		}
		return "[function]"
	case TFiber:
		return "[fiber]"
	}
	return "[object]"
}
