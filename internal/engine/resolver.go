package engine

import (
	"github.com/piwi3910/ClinicLayout/internal/model"
	"github.com/piwi3910/ClinicLayout/internal/rules"
)

// Resolver maps rule targets to the room instances of one build. Group
// membership is computed once in NewResolver.
type Resolver struct {
	byType map[string][]model.RoomInstance
	groups map[rules.Target][]model.RoomInstance
}

// NewResolver indexes instances by type and by group. Instances whose type
// is missing from repo belong to no category group.
func NewResolver(instances []model.RoomInstance, repo *rules.Repository) *Resolver {
	r := &Resolver{
		byType: make(map[string][]model.RoomInstance),
		groups: make(map[rules.Target][]model.RoomInstance),
	}
	for _, inst := range instances {
		r.byType[inst.Type] = append(r.byType[inst.Type], inst)

		if rule, ok := repo.Get(inst.Type); ok {
			switch rule.Category {
			case rules.CategoryClinical:
				r.groups[rules.GroupClinical] = append(r.groups[rules.GroupClinical], inst)
			case rules.CategoryPublic:
				r.groups[rules.GroupPublic] = append(r.groups[rules.GroupPublic], inst)
				r.groups[rules.GroupPatientFacing] = append(r.groups[rules.GroupPatientFacing], inst)
			case rules.CategoryPrivate:
				r.groups[rules.GroupPrivate] = append(r.groups[rules.GroupPrivate], inst)
			}
		}
		if rules.IsCorridorType(inst.Type) {
			r.groups[rules.GroupCorridors] = append(r.groups[rules.GroupCorridors], inst)
		}
	}
	return r
}

// Resolve returns the instances a target names. Group tags take precedence
// over a room type of the same name. Unknown targets resolve to nothing.
// The returned slice is shared and must not be modified.
func (r *Resolver) Resolve(t rules.Target) []model.RoomInstance {
	if t.IsGroup() {
		return r.groups[t]
	}
	return r.byType[string(t)]
}

// Contains reports whether the target resolves to the instance with id.
func (r *Resolver) Contains(t rules.Target, id string) bool {
	for _, inst := range r.Resolve(t) {
		if inst.ID == id {
			return true
		}
	}
	return false
}

// PairKey is an order-independent key for two instance IDs.
type PairKey [2]string

// NewPairKey returns the sorted pair of a and b.
func NewPairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{a, b}
}
