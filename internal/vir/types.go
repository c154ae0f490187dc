package vir

type LayerID int32
type StageID int32
type InterfaceID int32
type WireID int32
type Local int32

// ConstRelID and FnRelID index a specialization's resolution table; they
// are relative to the unit that mentions them.
type ConstRelID int32
type FnRelID int32

type EnumID int32
type VariantID int32

const (
	NoLayerID     LayerID     = -1
	NoStageID     StageID     = -1
	NoInterfaceID InterfaceID = -1
)

// EntryInterface is the interface every unit is entered through.
const EntryInterface InterfaceID = 0

// Usage classifies how a local crosses an interface boundary.
type Usage uint8

const (
	UsageNone Usage = iota
	UsageErase
	UsageGet
	UsageHedge
	UsageTake
	UsageSet
	UsageMut
)

func (u Usage) String() string {
	switch u {
	case UsageNone:
		return "none"
	case UsageErase:
		return "erase"
	case UsageGet:
		return "get"
	case UsageHedge:
		return "hedge"
	case UsageTake:
		return "take"
	case UsageSet:
		return "set"
	case UsageMut:
		return "mut"
	default:
		return "unknown"
	}
}

// UsagePair holds the interior-side and exterior-side usage of one local
// at an interface. Transfers into the interface realize Interior; the
// interface's own network root realizes Exterior.
type UsagePair struct {
	Interior Usage
	Exterior Usage
}
