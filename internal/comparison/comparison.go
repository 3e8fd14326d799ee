package comparison

import (
	"errors"
	"math"
	"sort"

	"github.com/methodlens/methodlens/internal/aggregate"
)

// DefaultThresholdPercent is the regression threshold used when the caller
// has no opinion.
const DefaultThresholdPercent = 5.0

// ErrInvalidThreshold is returned for a non-positive threshold.
var ErrInvalidThreshold = errors.New("regression threshold must be greater than zero")

// Classification of one method between two snapshots.
type Classification string

const (
	ClassificationImproved  Classification = "improved"
	ClassificationRegressed Classification = "regressed"
	ClassificationNew       Classification = "new"
	ClassificationRemoved   Classification = "removed"
	ClassificationUnchanged Classification = "unchanged"
)

type (
	// Entry is the diff for a single method key. Averages are nil when the
	// method is absent from one side; PercentChange is nil when it cannot
	// be computed (absent side or zero baseline average).
	Entry struct {
		MethodKey        string         `json:"method_key"`
		BaselineAvgMS    *float64       `json:"baseline_avg_ms"`
		CurrentAvgMS     *float64       `json:"current_avg_ms"`
		PercentChange    *float64       `json:"percent_change"`
		AbsoluteChangeMS *float64       `json:"absolute_change_ms"`
		Classification   Classification `json:"classification"`
	}

	// Summary tallies entries per classification.
	Summary struct {
		Improved      int `json:"improved"`
		Regressed     int `json:"regressed"`
		New           int `json:"new"`
		Removed       int `json:"removed"`
		Unchanged     int `json:"unchanged"`
		TotalCompared int `json:"total_compared"`
	}

	// Report is the full comparison of two snapshots' method maps.
	Report struct {
		Entries []Entry `json:"entries"`
		Summary Summary `json:"summary"`
	}
)

// Compare classifies every method present in either map. Slower is worse: a
// percent change at or above the threshold is a regression, at or below the
// negated threshold an improvement, anything narrower unchanged. Entries
// are ordered by absolute change magnitude, descending.
func Compare(baseline, current map[string]aggregate.MethodAggregate, thresholdPercent float64) (Report, error) {
	if thresholdPercent <= 0 {
		return Report{}, ErrInvalidThreshold
	}

	keys := make(map[string]struct{}, len(baseline)+len(current))
	for key := range baseline {
		keys[key] = struct{}{}
	}
	for key := range current {
		keys[key] = struct{}{}
	}

	entries := make([]Entry, 0, len(keys))
	for key := range keys {
		b, inBaseline := baseline[key]
		c, inCurrent := current[key]
		switch {
		case inBaseline && inCurrent:
			entries = append(entries, compareBoth(key, b, c, thresholdPercent))
		case inBaseline:
			avg := b.AverageDurationMS
			entries = append(entries, Entry{
				MethodKey:      key,
				BaselineAvgMS:  &avg,
				Classification: ClassificationRemoved,
			})
		default:
			avg := c.AverageDurationMS
			entries = append(entries, Entry{
				MethodKey:      key,
				CurrentAvgMS:   &avg,
				Classification: ClassificationNew,
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := absChange(entries[i]), absChange(entries[j])
		if a != b {
			return a > b
		}
		return entries[i].MethodKey < entries[j].MethodKey
	})

	report := Report{Entries: entries}
	for _, entry := range entries {
		switch entry.Classification {
		case ClassificationImproved:
			report.Summary.Improved++
		case ClassificationRegressed:
			report.Summary.Regressed++
		case ClassificationNew:
			report.Summary.New++
		case ClassificationRemoved:
			report.Summary.Removed++
		case ClassificationUnchanged:
			report.Summary.Unchanged++
		}
	}
	report.Summary.TotalCompared = len(entries)
	return report, nil
}

func compareBoth(key string, b, c aggregate.MethodAggregate, thresholdPercent float64) Entry {
	baselineAvg := b.AverageDurationMS
	currentAvg := c.AverageDurationMS
	absolute := currentAvg - baselineAvg
	entry := Entry{
		MethodKey:        key,
		BaselineAvgMS:    &baselineAvg,
		CurrentAvgMS:     &currentAvg,
		AbsoluteChangeMS: &absolute,
	}

	if baselineAvg == 0 {
		// No ratio to threshold against; classify by the sign of the
		// absolute change alone.
		switch {
		case absolute > 0:
			entry.Classification = ClassificationRegressed
		case absolute < 0:
			entry.Classification = ClassificationImproved
		default:
			entry.Classification = ClassificationUnchanged
		}
		return entry
	}

	percent := absolute / baselineAvg * 100
	entry.PercentChange = &percent
	switch {
	case math.Abs(percent) < thresholdPercent:
		entry.Classification = ClassificationUnchanged
	case percent > 0:
		entry.Classification = ClassificationRegressed
	default:
		entry.Classification = ClassificationImproved
	}
	return entry
}

func absChange(e Entry) float64 {
	if e.AbsoluteChangeMS == nil {
		return 0
	}
	return math.Abs(*e.AbsoluteChangeMS)
}
