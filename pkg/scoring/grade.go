package scoring

// BISGrade maps a per-test score to its letter grade.
func BISGrade(score float64) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B+"
	case score >= 60:
		return "B"
	case score >= 50:
		return "C"
	case score >= 40:
		return "D"
	default:
		return "F"
	}
}

// BRSGrade maps a suite score to its letter grade. The suite scale is
// finer-grained than the per-test scale.
func BRSGrade(score float64) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 85:
		return "A"
	case score >= 80:
		return "A-"
	case score >= 75:
		return "B+"
	case score >= 70:
		return "B"
	case score >= 65:
		return "B-"
	case score >= 60:
		return "C+"
	case score >= 55:
		return "C"
	case score >= 50:
		return "C-"
	case score >= 40:
		return "D"
	default:
		return "F"
	}
}
