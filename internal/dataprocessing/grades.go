package dataprocessing

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"crvx/internal/config"
	apperrors "crvx/internal/errors"
	"crvx/pkg/contracts/domain"
)

// GradeLabel is a parsed grade label. Single grades have Lower == Upper.
type GradeLabel struct {
	Lower int
	Upper int
}

// IsSplit reports whether the label spans two grades
func (g GradeLabel) IsSplit() bool {
	return g.Lower != g.Upper
}

// StripGradePrefix removes the leading grade-scale character ("V5" → "5").
func StripGradePrefix(label string) string {
	label = strings.TrimSpace(label)
	if len(label) > 0 && strings.EqualFold(label[:1], config.GradePrefix) {
		return label[1:]
	}
	return label
}

// ParseGradeLabel parses a prefix-free label: "B", "5" or "3-4".
func ParseGradeLabel(label string) (GradeLabel, error) {
	label = strings.TrimSpace(label)
	if lower, upper, ok := strings.Cut(label, "-"); ok {
		lo, err := parseSingleGrade(lower)
		if err != nil {
			return GradeLabel{}, fmt.Errorf("invalid split grade %q: %w", label, err)
		}
		hi, err := parseSingleGrade(upper)
		if err != nil {
			return GradeLabel{}, fmt.Errorf("invalid split grade %q: %w", label, err)
		}
		if hi < lo {
			return GradeLabel{}, fmt.Errorf("invalid split grade %q: upper bound below lower bound", label)
		}
		return GradeLabel{Lower: lo, Upper: hi}, nil
	}

	g, err := parseSingleGrade(label)
	if err != nil {
		return GradeLabel{}, err
	}
	return GradeLabel{Lower: g, Upper: g}, nil
}

func parseSingleGrade(s string) (int, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, config.BeginnerLabel) {
		return domain.BeginnerGrade, nil
	}
	g, err := strconv.Atoi(s)
	if err != nil || g < 0 {
		return 0, fmt.Errorf("invalid grade %q", s)
	}
	return g, nil
}

// GradeResolver maps grade labels to integer grades. It owns no randomness
// of its own: the generator is supplied by the caller and advanced once per
// split label resolved.
type GradeResolver struct {
	rng          *rand.Rand
	dropBeginner bool
}

// NewGradeResolver creates a resolver drawing from rng
func NewGradeResolver(rng *rand.Rand, dropBeginner bool) *GradeResolver {
	return &GradeResolver{rng: rng, dropBeginner: dropBeginner}
}

// Resolve returns the grade for label and whether the row should be kept.
// Split labels pick either bound with equal probability.
func (r *GradeResolver) Resolve(label string) (int, bool, error) {
	parsed, err := ParseGradeLabel(label)
	if err != nil {
		return 0, false, apperrors.NewParsingError("unresolvable grade label", err)
	}

	grade := parsed.Lower
	if parsed.IsSplit() && r.rng.Intn(2) == 1 {
		grade = parsed.Upper
	}

	if grade == domain.BeginnerGrade && r.dropBeginner {
		return grade, false, nil
	}
	return grade, true, nil
}

// GradeWeight is the points value of one send of grade. V0 is worth half a
// point, Vk is worth k and the beginner band is worth nothing.
func GradeWeight(grade int) float64 {
	switch {
	case grade < 0:
		return 0
	case grade == 0:
		return 0.5
	default:
		return float64(grade)
	}
}
