package equity

// PotOdds is the break-even equity for calling toCall into pot:
// toCall / (pot + toCall). Zero when there is nothing to call.
func PotOdds(pot, toCall int) float64 {
	if toCall <= 0 {
		return 0
	}
	return float64(toCall) / float64(pot+toCall)
}

// CallEV is the chip expectation of calling versus folding (fold = 0). pot
// already includes the bet being faced; it is zero exactly at PotOdds.
func CallEV(eq float64, pot, toCall int) float64 {
	P, b := float64(pot), float64(toCall)
	return eq*P - (1.0-eq)*b
}

// ShouldCall applies the pot-odds rule: call when equity beats the price.
func ShouldCall(eq float64, pot, toCall int) bool {
	return eq > PotOdds(pot, toCall)
}
