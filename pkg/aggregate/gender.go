package aggregate

import (
	"math"
	"strings"
)

// GenderYear pairs a discovery year with the discoverer's gender label
// as returned by the label service.
type GenderYear struct {
	Year   int
	Gender string
}

// GenderBucket is one decade of the representation chart: absolute
// counts plus percentage shares rounded to a tenth.
type GenderBucket struct {
	Decade   int     `json:"decade"`
	Women    int     `json:"women"`
	Men      int     `json:"men"`
	Other    int     `json:"other"`
	WomenPct float64 `json:"women_pct"`
	MenPct   float64 `json:"men_pct"`
	OtherPct float64 `json:"other_pct"`
}

// GenderByDecade buckets gender events into decades with the same
// zero-filled continuous axis as CountByDecade. Decades without events
// keep zero counts and zero shares.
func GenderByDecade(events []GenderYear) []GenderBucket {
	if len(events) == 0 {
		return []GenderBucket{}
	}

	type tally struct{ women, men, other int }
	counts := make(map[int]*tally)
	min, max := Decade(events[0].Year), Decade(events[0].Year)
	for _, e := range events {
		d := Decade(e.Year)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
		t := counts[d]
		if t == nil {
			t = &tally{}
			counts[d] = t
		}
		switch genderClass(e.Gender) {
		case classWomen:
			t.women++
		case classMen:
			t.men++
		default:
			t.other++
		}
	}

	buckets := make([]GenderBucket, 0, (max-min)/10+1)
	for d := min; d <= max; d += 10 {
		b := GenderBucket{Decade: d}
		if t := counts[d]; t != nil {
			b.Women, b.Men, b.Other = t.women, t.men, t.other
			total := float64(t.women + t.men + t.other)
			b.WomenPct = roundTenth(float64(t.women) / total * 100)
			b.MenPct = roundTenth(float64(t.men) / total * 100)
			b.OtherPct = roundTenth(float64(t.other) / total * 100)
		}
		buckets = append(buckets, b)
	}
	return buckets
}

const (
	classWomen = iota
	classMen
	classOther
)

// genderClass maps Wikidata's English gender labels onto the chart's
// three series. Labels the vocabulary doesn't cover land in "other".
func genderClass(label string) int {
	switch strings.ToLower(label) {
	case "female", "trans woman", "transgender female":
		return classWomen
	case "male", "trans man", "transgender male":
		return classMen
	default:
		return classOther
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
