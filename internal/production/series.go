// Package production holds the monthly energy production figures shown in
// the ORC vs PV comparison chart.
package production

// Title is the chart heading.
const Title = "Miesięczna Produkcja Energii (Stabilność ORC vs Sezonowość PV)"

// Months are the Polish month abbreviations used as chart labels.
var Months = [12]string{"Sty", "Lut", "Mar", "Kwi", "Maj", "Cze", "Lip", "Sie", "Wrz", "Paź", "Lis", "Gru"}

// Series is one dataset of monthly output in kWh.
type Series struct {
	Label  string      `json:"label"`
	Color  string      `json:"color"`
	Values [12]float64 `json:"data"`
}

// Total returns the annual output.
func (s Series) Total() float64 {
	var sum float64
	for _, v := range s.Values {
		sum += v
	}
	return sum
}

// Peak returns the largest monthly value.
func (s Series) Peak() float64 {
	var peak float64
	for _, v := range s.Values {
		if v > peak {
			peak = v
		}
	}
	return peak
}

// ORC is the turbine output: flat all year because process heat is.
func ORC() Series {
	var v [12]float64
	for i := range v {
		v[i] = 170000
	}
	return Series{Label: "Turbina ORC (kWh)", Color: "#FF6B35", Values: v}
}

// PV is a typical rooftop photovoltaic profile for Poland.
func PV() Series {
	return Series{
		Label:  "Fotowoltaika (kWh)",
		Color:  "#F59E0B",
		Values: [12]float64{5000, 8000, 15000, 25000, 35000, 40000, 42000, 38000, 28000, 15000, 8000, 4000},
	}
}

// Chart is the full comparison dataset.
type Chart struct {
	Title  string     `json:"title"`
	Labels [12]string `json:"labels"`
	Series []Series   `json:"datasets"`
}

// Comparison returns the ORC vs PV chart.
func Comparison() Chart {
	return Chart{Title: Title, Labels: Months, Series: []Series{ORC(), PV()}}
}

// Totals sums every series month by month.
func (c Chart) Totals() [12]float64 {
	var out [12]float64
	for _, s := range c.Series {
		for i, v := range s.Values {
			out[i] += v
		}
	}
	return out
}

// Peak returns the largest single monthly value across all series.
func (c Chart) Peak() float64 {
	var peak float64
	for _, s := range c.Series {
		if p := s.Peak(); p > peak {
			peak = p
		}
	}
	return peak
}
