package turbocycle

import "turbocycle/types"

// Comparison 单一架构的求解结果
type Comparison struct {
	Cycle       types.CycleType
	Performance types.Performance
	Err         error
}

// Compare 将同一设计点依次按全部架构求解,单个架构失败不影响其余架构
func (s *Solver) Compare(def types.Definition) []Comparison {
	cycles := types.CycleTypes()
	out := make([]Comparison, 0, len(cycles))
	for _, c := range cycles {
		d := def
		d.Cycle = c
		p, err := s.Solve(d)
		out = append(out, Comparison{Cycle: c, Performance: p, Err: err})
	}
	return out
}

// Best 收敛结果中系统比冲最高者
func Best(results []Comparison) (Comparison, bool) {
	var best Comparison
	found := false
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if !found || r.Performance.IspDelivered > best.Performance.IspDelivered {
			best, found = r, true
		}
	}
	return best, found
}
