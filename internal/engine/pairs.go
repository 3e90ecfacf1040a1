package engine

import (
	"log/slog"

	"github.com/piwi3910/ClinicLayout/internal/model"
	"github.com/piwi3910/ClinicLayout/internal/rules"
)

// rulePair is one concrete pairwise requirement between two instances.
type rulePair struct {
	A, B   model.RoomInstance
	Hard   bool
	Cap    *int    // distance cap, proximity only
	Weight float64 // objective weight, proximity only
}

// ruleSet holds every pairwise requirement of a build, in rule order.
// Direct, separation, hidden and visible pairs are deduplicated by PairKey.
// Direct and separation pairs are always hard; a visibility pair declared
// hard on either side is hard.
type ruleSet struct {
	direct     []rulePair
	separation []rulePair
	hidden     []rulePair
	visible    []rulePair
	proximity  []rulePair

	// corridor is the instance doors are tied to; tied lists the rooms whose
	// ENTRY_FROM rules resolve to it.
	corridor *model.RoomInstance
	tied     []tiedRoom
	skipped  int
}

type tiedRoom struct {
	Room model.RoomInstance
	Hard bool
}

// pairIndex deduplicates unordered pairs while keeping first-seen order.
type pairIndex struct {
	pos   map[PairKey]int
	pairs []rulePair
}

func (p *pairIndex) add(a, b model.RoomInstance, hard bool) {
	if p.pos == nil {
		p.pos = make(map[PairKey]int)
	}
	key := NewPairKey(a.ID, b.ID)
	if i, ok := p.pos[key]; ok {
		p.pairs[i].Hard = p.pairs[i].Hard || hard
		return
	}
	p.pos[key] = len(p.pairs)
	p.pairs = append(p.pairs, rulePair{A: a, B: b, Hard: hard})
}

// collectRules resolves every rule of every instance into concrete pairs.
func collectRules(instances []model.RoomInstance, repo *rules.Repository, res *Resolver, logger *slog.Logger) ruleSet {
	var rs ruleSet
	var direct, separation, hidden, visible pairIndex

	for _, c := range instances {
		if c.Type == rules.ClinicalCorridor {
			corr := c
			rs.corridor = &corr
			break
		}
	}

	for _, inst := range instances {
		rule, ok := repo.Get(inst.Type)
		if !ok {
			logger.Debug("no rules for room type", "type", inst.Type, "room", inst.ID)
			continue
		}

		for _, d := range rule.Adjacency.Direct {
			if !d.Condition.Applies() {
				logger.Debug("skipping conditional direct rule", "room", inst.ID, "target", d.Target, "condition", d.Condition)
				rs.skipped++
				continue
			}
			eachTarget(res, inst, d.Target, logger, func(t model.RoomInstance) {
				direct.add(inst, t, true)
			})
		}
		for _, s := range rule.Adjacency.Separation {
			eachTarget(res, inst, s.Target, logger, func(t model.RoomInstance) {
				separation.add(inst, t, true)
			})
		}
		for _, p := range rule.Adjacency.Proximity {
			eachTarget(res, inst, p.Target, logger, func(t model.RoomInstance) {
				rs.proximity = append(rs.proximity, rulePair{A: inst, B: t, Hard: true, Cap: p.MaxDistance, Weight: p.Weight})
			})
		}
		for _, v := range rule.Visibility.HiddenFrom {
			eachTarget(res, inst, v.Target, logger, func(t model.RoomInstance) {
				hidden.add(inst, t, v.Hard)
			})
		}
		for _, v := range rule.Visibility.VisibleFrom {
			eachTarget(res, inst, v.Target, logger, func(t model.RoomInstance) {
				visible.add(inst, t, v.Hard)
			})
		}

		if rs.corridor != nil && inst.ID != rs.corridor.ID {
			tied, hard := false, false
			for _, e := range rule.Access.Entries {
				if e.Kind == rules.EntryFrom && res.Contains(e.Target, rs.corridor.ID) {
					tied = true
					hard = hard || e.Hard
				}
			}
			if tied {
				rs.tied = append(rs.tied, tiedRoom{Room: inst, Hard: hard})
			}
		}
	}

	rs.direct = direct.pairs
	rs.separation = separation.pairs
	rs.hidden = hidden.pairs
	rs.visible = visible.pairs
	return rs
}

// eachTarget calls fn for every instance target resolves to, except inst.
func eachTarget(res *Resolver, inst model.RoomInstance, target rules.Target, logger *slog.Logger, fn func(model.RoomInstance)) {
	resolved := res.Resolve(target)
	if len(resolved) == 0 {
		logger.Debug("target resolves to no rooms", "room", inst.ID, "target", target)
		return
	}
	for _, t := range resolved {
		if t.ID != inst.ID {
			fn(t)
		}
	}
}

// softMode reports how a pair is emitted under the soft rule policy:
// enforced as hard, relaxed with a penalized indicator, or skipped.
type softMode int

const (
	modeHard softMode = iota
	modeRelax
	modeSkip
)

func ruleMode(hard bool, policy model.SoftRulePolicy) softMode {
	if hard {
		return modeHard
	}
	switch policy {
	case model.SoftEnforce:
		return modeHard
	case model.SoftSkip:
		return modeSkip
	}
	return modeRelax
}
