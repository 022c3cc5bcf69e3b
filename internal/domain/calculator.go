package domain

import "time"

// ShiftTotals are the amounts derived from a shift's time span and rates.
type ShiftTotals struct {
	Hours    float64
	Earnings float64
	Tax      float64
}

// ComputeShiftTotals converts a time span and rates into hours, earnings and tax.
// No rounding is applied. Callers must reject end <= start before calling.
func ComputeShiftTotals(start, end time.Time, hourlyRate, taxPercent float64) ShiftTotals {
	hours := end.Sub(start).Hours()
	earnings := hours * hourlyRate
	return ShiftTotals{
		Hours:    hours,
		Earnings: earnings,
		Tax:      earnings * taxPercent / 100,
	}
}

// ComputeMileageAmount returns distance * rate. Callers must reject negative distance.
func ComputeMileageAmount(distance, ratePerUnit float64) float64 {
	return distance * ratePerUnit
}

// InvoiceTotals are the cached sums over an invoice's claim sets.
type InvoiceTotals struct {
	Hours    float64
	Earnings float64
	Tax      float64
	Mileage  float64
}

// GrandTotal is earnings + tax + mileage.
func (t InvoiceTotals) GrandTotal() float64 {
	return t.Earnings + t.Tax + t.Mileage
}

// SumClaims recomputes invoice totals from the claimed records.
func SumClaims(shifts []*Shift, mileages []*Mileage) InvoiceTotals {
	var t InvoiceTotals
	for _, s := range shifts {
		st := ComputeShiftTotals(s.StartTime, s.EndTime, s.HourlyRate, s.TaxPercent)
		t.Hours += st.Hours
		t.Earnings += st.Earnings
		t.Tax += st.Tax
	}
	for _, m := range mileages {
		t.Mileage += ComputeMileageAmount(m.Distance, m.RatePerKm)
	}
	return t
}
