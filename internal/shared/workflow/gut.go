package workflow

// GUTScore computes the Gravity-Urgency-Tendency priority score. Each input
// must already be in [1,5]; the scorer does not clamp.
func GUTScore(gravity, urgency, tendency int) (int, error) {
	var bad []string
	if gravity < 1 || gravity > 5 {
		bad = append(bad, "gut_gravity")
	}
	if urgency < 1 || urgency > 5 {
		bad = append(bad, "gut_urgency")
	}
	if tendency < 1 || tendency > 5 {
		bad = append(bad, "gut_tendency")
	}
	if len(bad) > 0 {
		return 0, NewValidationError(bad...)
	}
	return gravity * urgency * tendency, nil
}
