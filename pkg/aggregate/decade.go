// Package aggregate turns dated rows into chart-ready series: decade
// histograms and per-decade gender shares. Everything here is a pure
// function over plain values so the service layer can compose them
// behind any data source.
package aggregate

// Decade floors a year to the start of its decade. Negative years
// floor toward minus infinity, so -15 belongs to -20 and -150 to -150.
func Decade(year int) int {
	d := year / 10 * 10
	if year < 0 && year%10 != 0 {
		d -= 10
	}
	return d
}

// Bucket is one bar of the timeline histogram.
type Bucket struct {
	Decade int `json:"decade"`
	Count  int `json:"count"`
}

// CountByDecade buckets years into decades, sorted ascending, with
// empty decades between the first and last populated one zero-filled
// so chart axes stay continuous. An empty input yields an empty,
// non-nil slice.
func CountByDecade(years []int) []Bucket {
	if len(years) == 0 {
		return []Bucket{}
	}

	counts := make(map[int]int)
	min, max := Decade(years[0]), Decade(years[0])
	for _, y := range years {
		d := Decade(y)
		counts[d]++
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}

	buckets := make([]Bucket, 0, (max-min)/10+1)
	for d := min; d <= max; d += 10 {
		buckets = append(buckets, Bucket{Decade: d, Count: counts[d]})
	}
	return buckets
}
