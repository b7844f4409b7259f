package dataset

// Labels holds forward-looking training targets for a single horizon.
// Row t is defined only when t+offset is inside the observed series; the
// trailing offset rows carry Defined=false and are excluded from that
// horizon's dataset only.
type Labels struct {
	Offset    int
	Direction []int     // 1 when close[t+offset] > close[t]
	Target    []float64 // close[t+offset]
	Defined   []bool
}

// MakeLabels derives direction and target-price labels from the close
// series. Feature columns are never touched.
func MakeLabels(closes []float64, offset int) Labels {
	n := len(closes)
	l := Labels{
		Offset:    offset,
		Direction: make([]int, n),
		Target:    make([]float64, n),
		Defined:   make([]bool, n),
	}
	for t := 0; t+offset < n; t++ {
		future := closes[t+offset]
		if future > closes[t] {
			l.Direction[t] = 1
		}
		l.Target[t] = future
		l.Defined[t] = true
	}
	return l
}

// DefinedCount returns the number of labeled rows.
func (l Labels) DefinedCount() int {
	count := 0
	for _, d := range l.Defined {
		if d {
			count++
		}
	}
	return count
}
