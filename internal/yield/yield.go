// Package yield converts reel measurements into theoretical sheet counts.
//
// Everything here is pure arithmetic. Degenerate inputs (non-positive ream weight
// or initial sheets) produce a zero Result with OK=false, which callers must read
// as "insufficient data" rather than a measured zero.
package yield

import "math"

// SheetsPerReam is the number of sheets in a standard ream.
const SheetsPerReam = 500

// reamDivisor scales length_cm × cutoff_cm × gsm to kilograms per ream of 500 sheets.
const reamDivisor = 20000

// Input describes one proposed ruling against a reel.
type Input struct {
	LengthCm      float64
	GSM           float64
	CutoffCm      float64
	ReelWeightKg  float64
	InitialSheets int64
	SheetsRuled   int64
}

// Result is the theoretical yield for an Input.
type Result struct {
	ReamWeight        float64
	RulingWeightKg    float64
	TheoreticalSheets float64
	Difference        float64
	OK                bool
}

// ReamWeight returns the weight in kg of 500 sheets cut at cutoffCm.
func ReamWeight(lengthCm, gsm, cutoffCm float64) float64 {
	return (lengthCm * cutoffCm * gsm) / reamDivisor
}

// Compute returns the theoretical sheets and variance for in.
func Compute(in Input) Result {
	ream := ReamWeight(in.LengthCm, in.GSM, in.CutoffCm)
	if !(ream > 0) || in.InitialSheets <= 0 || math.IsInf(ream, 0) {
		return Result{}
	}
	perSheet := in.ReelWeightKg / float64(in.InitialSheets)
	rulingWeight := float64(in.SheetsRuled) * perSheet
	theoretical := (rulingWeight * SheetsPerReam) / ream
	return Result{
		ReamWeight:        ream,
		RulingWeightKg:    rulingWeight,
		TheoreticalSheets: theoretical,
		Difference:        float64(in.SheetsRuled) - theoretical,
		OK:                true,
	}
}

// InitialSheets estimates the full-weight yield of a reel at cutoffCm. It returns 0
// when the ream weight is not positive or the estimate does not fit in an int64.
func InitialSheets(lengthCm, gsm, cutoffCm, weightKg float64) int64 {
	ream := ReamWeight(lengthCm, gsm, cutoffCm)
	if !(ream > 0) || !(weightKg > 0) {
		return 0
	}
	sheets := math.Floor((weightKg * SheetsPerReam) / ream)
	// float64(MaxInt64) rounds up to 2^63, which is already out of range.
	if math.IsNaN(sheets) || sheets >= float64(math.MaxInt64) {
		return 0
	}
	return int64(sheets)
}
