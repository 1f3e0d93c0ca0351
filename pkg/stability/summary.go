package stability

import "sort"

// CoreSummary aggregates the records of one physical core
type CoreSummary struct {
	Socket    int      `json:"socket" yaml:"socket"`
	Core      int      `json:"core" yaml:"core"`
	Events    int      `json:"events" yaml:"events"`
	Boots     []int    `json:"boots" yaml:"boots"`
	Sources   []string `json:"sources" yaml:"sources"`
	FirstSeen string   `json:"first_seen" yaml:"first_seen"`
	LastSeen  string   `json:"last_seen" yaml:"last_seen"`
}

type coreKey struct {
	socket int
	core   int
}

// Summarize groups records by socket and core. Records are assumed to be in
// journal order, so first and last seen follow input order rather than the
// year-less timestamps.
func Summarize(records []Record) []CoreSummary {
	byCore := make(map[coreKey]*CoreSummary)
	seenBoot := make(map[coreKey]map[int]bool)
	seenSource := make(map[coreKey]map[string]bool)

	for _, r := range records {
		key := coreKey{socket: r.Socket, core: r.Core}
		summary, ok := byCore[key]
		if !ok {
			summary = &CoreSummary{
				Socket:    r.Socket,
				Core:      r.Core,
				Boots:     []int{},
				Sources:   []string{},
				FirstSeen: r.Timestamp,
			}
			byCore[key] = summary
			seenBoot[key] = make(map[int]bool)
			seenSource[key] = make(map[string]bool)
		}

		summary.Events++
		summary.LastSeen = r.Timestamp
		if !seenBoot[key][r.Boot] {
			seenBoot[key][r.Boot] = true
			summary.Boots = append(summary.Boots, r.Boot)
		}
		if r.Source != "" && !seenSource[key][r.Source] {
			seenSource[key][r.Source] = true
			summary.Sources = append(summary.Sources, r.Source)
		}
	}

	summaries := make([]CoreSummary, 0, len(byCore))
	for _, s := range byCore {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Socket != summaries[j].Socket {
			return summaries[i].Socket < summaries[j].Socket
		}
		return summaries[i].Core < summaries[j].Core
	})

	return summaries
}
