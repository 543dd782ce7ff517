package batch

// Summary aggregates a batch run.
type Summary struct {
	Pairs     int     `json:"pairs"`
	Failed    int     `json:"failed"`
	CacheHits int     `json:"cache_hits"`
	MeanMin   float64 `json:"mean_min"`
	MeanRes   float64 `json:"mean_res"`
	MeanExt   float64 `json:"mean_ext"`
}

// Summarize averages the estimates of successful outcomes.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Pairs: len(outcomes)}

	ok := 0
	for _, o := range outcomes {
		if o.Result == nil {
			s.Failed++
			continue
		}
		if o.Cached {
			s.CacheHits++
		}
		ok++
		s.MeanMin += o.Result.Min
		s.MeanRes += o.Result.Res
		s.MeanExt += o.Result.Ext
	}

	if ok == 0 {
		return s
	}
	n := float64(ok)
	s.MeanMin /= n
	s.MeanRes /= n
	s.MeanExt /= n
	return s
}
