package shading

import (
	"math"
	"sort"

	"github.com/df07/go-material-eval/pkg/material"
)

// KindStats aggregates the records of one material kind
type KindStats struct {
	Kind       material.Kind
	Points     int     // Records shaded without error
	Errors     int     // Records that failed to shade
	Fallbacks  int     // Points evaluated with the universal evaluator after the scene evaluator declined
	Subsurface int     // Points that produced a BSSRDF
	Transmits  int     // Points whose BSDF has a transmission lobe
	MeanF      float64 // Average of F over wavelengths and points
	MaxF       float64
	MeanPDF    float64
}

// AddRecord folds rec into the statistics
func (ks *KindStats) AddRecord(rec Record) {
	if rec.Err != nil {
		ks.Errors++
		return
	}
	f := rec.F.Average()
	ks.MeanF += (f - ks.MeanF) / float64(ks.Points+1)
	ks.MeanPDF += (rec.PDF - ks.MeanPDF) / float64(ks.Points+1)
	ks.MaxF = math.Max(ks.MaxF, rec.F.MaxComponent())
	ks.Points++
	if rec.Fallback {
		ks.Fallbacks++
	}
	if rec.HasBSSRDF {
		ks.Subsurface++
	}
	if rec.Flags.IsTransmissive() {
		ks.Transmits++
	}
}

// Tally groups records by material kind, ordered by kind. Errors carry no
// kind and are reported separately.
func Tally(records []Record) (stats []KindStats, failed int) {
	byKind := map[material.Kind]*KindStats{}
	for _, rec := range records {
		if rec.Err != nil {
			failed++
			continue
		}
		ks, ok := byKind[rec.Kind]
		if !ok {
			ks = &KindStats{Kind: rec.Kind}
			byKind[rec.Kind] = ks
		}
		ks.AddRecord(rec)
	}

	stats = make([]KindStats, 0, len(byKind))
	for _, ks := range byKind {
		stats = append(stats, *ks)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Kind < stats[j].Kind })
	return stats, failed
}
