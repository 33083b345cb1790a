package field

// MTIEnvelope reduces two TI pairs into a multi-TI (mTI) envelope of
// envelopes: each pair's two channel fields are first combined into an
// intermediate vector field via TIVectors, then those two vector fields are
// combined again with TIEnvelope. This mirrors the two-stage structure of
// the reference mTI construction (vectors from pair A, vectors from pair
// B, then envelope of the two vector fields) — the exact formula for the
// intermediate vectors is this implementation's own closed-form extension
// (see TIVectors), since only the call structure was available to ground
// this on, not the vector formula's source.
func MTIEnvelope(pairAChannel1, pairAChannel2, pairBChannel1, pairBChannel2 []Vec3) []float64 {
	vecsA := TIVectors(pairAChannel1, pairAChannel2)
	vecsB := TIVectors(pairBChannel1, pairBChannel2)
	return TIEnvelope(vecsA, vecsB)
}
