package classifier

import "strings"

// Category names as they appear in verdicts and webhook payloads.
const (
	CategoryViolence      = "Violence"
	CategoryTerrorism     = "Terrorism"
	CategoryHarassment    = "Harassment"
	CategoryProfanity     = "Profanity"
	CategoryHateSpeech    = "Hate Speech"
	CategoryCyberbullying = "Cyberbullying"
	CategoryNudity        = "Nudity"
)

// NudityThreshold is the minimum detector confidence for an explicit
// class before an image is categorized as Nudity.
const NudityThreshold = 0.80

// DetectedCategoryPrefix marks the whole-image label entry that is added
// to every image verdict regardless of score.
const DetectedCategoryPrefix = "Detected Category → "

// terrorismLexicon gates the Terrorism category: scores alone are not
// enough, the text must also contain one of these terms.
var terrorismLexicon = []string{
	"bomb",
	"jihad",
	"terror",
	"attack",
	"islamic state",
}

// explicitClasses are the detector classes that count as explicit
// nudity. Covered and suggestive classes do not trigger the category.
var explicitClasses = map[string]bool{
	"FEMALE_GENITALIA_EXPOSED": true,
	"MALE_GENITALIA_EXPOSED":   true,
	"FEMALE_BREAST_EXPOSED":    true,
	"EXPOSED_BUTTOCKS":         true,
}

// TextCategories applies the category rules to a set of text scores. All
// threshold comparisons are strictly greater-than, a score sitting
// exactly on a threshold does not trigger.
func TextCategories(scores TextScores, text string) []string {
	categories := make([]string, 0, 4)
	lowered := strings.ToLower(text)

	if scores.Threat > 60 || (scores.Toxicity > 70 && scores.SevereToxicity > 40) {
		categories = append(categories, CategoryViolence)
	}

	if scores.Threat > 70 && scores.IdentityAttack > 40 && containsTerrorismTerm(lowered) {
		categories = append(categories, CategoryTerrorism)
	}

	if (scores.Insult > 50 || scores.IdentityAttack > 50) && scores.Toxicity > 50 && scores.Threat > 50 {
		categories = append(categories, CategoryHarassment)
	}

	if scores.Obscenity > 30 && scores.SexualExplicit > 20 {
		categories = append(categories, CategoryProfanity)
	}

	if scores.IdentityAttack > 50 && scores.Toxicity > 60 {
		categories = append(categories, CategoryHateSpeech)
	}

	if scores.Insult > 70 && scores.Toxicity > 50 {
		categories = append(categories, CategoryCyberbullying)
	}

	return dedupe(categories)
}

func containsTerrorismTerm(lowered string) bool {
	for _, term := range terrorismLexicon {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// ExplicitNudity reports whether any explicit class was detected at or
// above the nudity threshold, along with the strongest explicit score.
func ExplicitNudity(detections []Detection) (bool, float64) {
	var best float64
	for _, d := range detections {
		if !explicitClasses[d.Class] {
			continue
		}
		if d.Score > best {
			best = d.Score
		}
	}
	return best >= NudityThreshold, best
}

// ImageCategories derives the category set for one image. The
// whole-image label is always included, so every image verdict carries
// at least one category.
func ImageCategories(detections []Detection, label LabelPrediction) []string {
	categories := make([]string, 0, 2)

	if explicit, _ := ExplicitNudity(detections); explicit {
		categories = append(categories, CategoryNudity)
	}

	categories = append(categories, DetectedCategoryPrefix+label.Label)

	return dedupe(categories)
}

func dedupe(categories []string) []string {
	seen := make(map[string]bool, len(categories))
	result := categories[:0]
	for _, c := range categories {
		if seen[c] {
			continue
		}
		seen[c] = true
		result = append(result, c)
	}
	return result
}
