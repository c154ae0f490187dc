// Package chart holds the item definitions emission consults: the owning
// fragment of every unit and the variant lists of enums.
package chart

import "vine/internal/vir"

type FragmentID int32

const NoFragmentID FragmentID = -1

// Fragment is a compiled definition; Path is its qualified name.
type Fragment struct {
	Path string
}

// EnumDef lists an enum's variants in declaration order.
type EnumDef struct {
	Name     string
	Variants []string
}

type Chart struct {
	Enums []EnumDef
}

// Enum returns the definition of id, or nil.
func (c *Chart) Enum(id vir.EnumID) *EnumDef {
	if c == nil || id < 0 || int(id) >= len(c.Enums) {
		return nil
	}
	return &c.Enums[id]
}
