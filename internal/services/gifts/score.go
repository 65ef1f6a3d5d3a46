package gifts

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/nidrosoft/rizzer-sub001/internal/models"
)

// Quality gates. The server gate is deliberately low so new profiles get
// suggestions early; the interactive readiness check asks for more.
const (
	ServerMinQualityScore = 5
	ClientMinQualityScore = 30
)

// profileFieldCount is the number of basic fields scored for completeness
const profileFieldCount = 5

// CategoryWeight is one category's share of the score and the item count at
// which that share is fully earned.
type CategoryWeight struct {
	Weight    float64
	Threshold int
}

// ScoreWeights is the weight table for Score. Weights sum to 100.
type ScoreWeights struct {
	Profile       float64
	Interests     CategoryWeight
	Conversations CategoryWeight
	Memories      CategoryWeight
	Notes         CategoryWeight
	Dates         CategoryWeight
	GiftHistory   CategoryWeight
	GiftIdeas     CategoryWeight
}

// DefaultScoreWeights is the single table shared by every caller
var DefaultScoreWeights = ScoreWeights{
	Profile:       20,
	Interests:     CategoryWeight{Weight: 20, Threshold: 5},
	Conversations: CategoryWeight{Weight: 15, Threshold: 10},
	Memories:      CategoryWeight{Weight: 15, Threshold: 5},
	Notes:         CategoryWeight{Weight: 10, Threshold: 5},
	Dates:         CategoryWeight{Weight: 10, Threshold: 5},
	GiftHistory:   CategoryWeight{Weight: 5, Threshold: 3},
	GiftIdeas:     CategoryWeight{Weight: 5, Threshold: 3},
}

// CategoryScore is one row of a readiness breakdown
type CategoryScore struct {
	Category  string  `json:"category"`
	Count     int     `json:"count"`
	Threshold int     `json:"threshold"`
	Points    float64 `json:"points"`
	MaxPoints float64 `json:"max_points"`
}

// Readiness reports whether an aggregate passes a quality gate and why
type Readiness struct {
	Score     int             `json:"score"`
	Threshold int             `json:"threshold"`
	Ready     bool            `json:"ready"`
	Breakdown []CategoryScore `json:"breakdown"`
	Hint      string          `json:"hint,omitempty"`
}

// Score rates how much usable data an aggregate holds, 0 to 100. It only
// reads agg and never fails on empty lists.
func Score(agg *models.ProfileAggregate, w ScoreWeights) int {
	total := 0.0
	for _, c := range breakdown(agg, w) {
		total += c.Points
	}
	score := int(math.Round(total))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// CheckReadiness scores agg against threshold and builds the hint shown when
// it falls short.
func CheckReadiness(agg *models.ProfileAggregate, w ScoreWeights, threshold int) Readiness {
	rows := breakdown(agg, w)
	r := Readiness{
		Score:     Score(agg, w),
		Threshold: threshold,
		Breakdown: rows,
	}
	r.Ready = r.Score >= threshold
	if !r.Ready {
		r.Hint = hintFor(rows)
	}
	return r
}

// Gate returns an InsufficientDataError when agg scores below threshold
func Gate(agg *models.ProfileAggregate, w ScoreWeights, threshold int) error {
	r := CheckReadiness(agg, w, threshold)
	if r.Ready {
		return nil
	}
	return &InsufficientDataError{Score: r.Score, Threshold: threshold, Hint: r.Hint}
}

func breakdown(agg *models.ProfileAggregate, w ScoreWeights) []CategoryScore {
	if agg == nil {
		agg = &models.ProfileAggregate{}
	}
	filled := filledProfileFields(&agg.Profile)
	rows := []CategoryScore{{
		Category:  "profile",
		Count:     filled,
		Threshold: profileFieldCount,
		Points:    float64(filled) / profileFieldCount * w.Profile,
		MaxPoints: w.Profile,
	}}

	add := func(name string, count int, cw CategoryWeight) {
		rows = append(rows, CategoryScore{
			Category:  name,
			Count:     count,
			Threshold: cw.Threshold,
			Points:    categoryPoints(count, cw),
			MaxPoints: cw.Weight,
		})
	}
	add("interests", len(agg.Interests), w.Interests)
	add("conversations", len(agg.Conversations), w.Conversations)
	add("memories", len(agg.Memories), w.Memories)
	add("notes", len(agg.Notes), w.Notes)
	add("dates", len(agg.Dates), w.Dates)
	add("gift history", len(agg.GiftHistory), w.GiftHistory)
	add("gift ideas", len(agg.GiftIdeas), w.GiftIdeas)
	return rows
}

func categoryPoints(count int, cw CategoryWeight) float64 {
	if cw.Threshold <= 0 || count <= 0 {
		return 0
	}
	return math.Min(float64(count)/float64(cw.Threshold), 1) * cw.Weight
}

func filledProfileFields(p *models.Profile) int {
	n := 0
	if strings.TrimSpace(p.Name) != "" {
		n++
	}
	if p.Age != nil {
		n++
	}
	if nonEmpty(p.RelationshipStatus) {
		n++
	}
	if nonEmpty(p.HowWeMet) {
		n++
	}
	if p.RelationshipStart != nil {
		n++
	}
	return n
}

func nonEmpty(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// hintFor names the categories with the most points left on the table
func hintFor(rows []CategoryScore) string {
	missing := make([]CategoryScore, 0, len(rows))
	for _, r := range rows {
		if r.MaxPoints-r.Points > 0 {
			missing = append(missing, r)
		}
	}
	if len(missing) == 0 {
		return "Add more details to this profile to get gift suggestions."
	}
	sort.SliceStable(missing, func(i, j int) bool {
		return missing[i].MaxPoints-missing[i].Points > missing[j].MaxPoints-missing[j].Points
	})
	if len(missing) > 3 {
		missing = missing[:3]
	}
	names := make([]string, len(missing))
	for i, r := range missing {
		names[i] = r.Category
	}
	return fmt.Sprintf("Add more details (%s) to get better gift suggestions.", strings.Join(names, ", "))
}
