package services

import (
	"strconv"
	"strings"
	"time"

	"talkmatch/app/models"
)

// Compatibility scoring: five independent weighted sub-scores, summed and
// capped at 100. All functions here are pure and symmetric in their two
// arguments; the intent and mood tables are unordered-pair lookups.

const (
	maxIntentScore   = 40
	maxMoodScore     = 25
	maxLanguageScore = 20
	maxTimezoneScore = 10
	maxTopicScore    = 5

	// MaxCompatibilityScore caps the final score
	MaxCompatibilityScore = 100

	// defaultMoodScore is the baseline for mood pairs absent from the table.
	// Two people are never maximally incompatible purely on mood.
	defaultMoodScore = 10
)

type intentPair struct {
	a, b models.Intent
}

func normIntentPair(a, b models.Intent) intentPair {
	if a > b {
		a, b = b, a
	}
	return intentPair{a, b}
}

// compatibleIntents score 30: pairings that work well even though the
// intents differ
var compatibleIntents = map[intentPair]struct{}{
	normIntentPair(models.IntentVent, models.IntentJustListen): {},
	normIntentPair(models.IntentAdvice, models.IntentDeepTalk): {},
}

// partialIntents score 15: workable but not ideal pairings
var partialIntents = map[intentPair]struct{}{
	normIntentPair(models.IntentVent, models.IntentAdvice):           {},
	normIntentPair(models.IntentVent, models.IntentDeepTalk):         {},
	normIntentPair(models.IntentCasualChat, models.IntentJustListen): {},
	normIntentPair(models.IntentCasualChat, models.IntentDeepTalk):   {},
}

// IntentScore scores how well two stated intents fit together (max 40)
func IntentScore(a, b models.Intent) int {
	if a == b {
		return maxIntentScore
	}
	pair := normIntentPair(a, b)
	if _, ok := compatibleIntents[pair]; ok {
		return 30
	}
	if _, ok := partialIntents[pair]; ok {
		return 15
	}
	return 0
}

type moodPair struct {
	a, b models.Mood
}

func normMoodPair(a, b models.Mood) moodPair {
	if a > b {
		a, b = b, a
	}
	return moodPair{a, b}
}

// moodScores holds hand-tuned scores for specific mood pairings; any pair
// absent from the table falls back to defaultMoodScore
var moodScores = map[moodPair]int{
	normMoodPair(models.MoodHappy, models.MoodHappy):         25,
	normMoodPair(models.MoodSad, models.MoodHopeful):         25,
	normMoodPair(models.MoodExcited, models.MoodExcited):     25,
	normMoodPair(models.MoodHappy, models.MoodExcited):       22,
	normMoodPair(models.MoodHopeful, models.MoodHopeful):     22,
	normMoodPair(models.MoodLonely, models.MoodHopeful):      20,
	normMoodPair(models.MoodAnxious, models.MoodHopeful):     20,
	normMoodPair(models.MoodOverwhelmed, models.MoodHopeful): 20,
	normMoodPair(models.MoodLonely, models.MoodLonely):       18,
	normMoodPair(models.MoodSad, models.MoodLonely):          16,
	normMoodPair(models.MoodNeutral, models.MoodNeutral):     15,
	normMoodPair(models.MoodSad, models.MoodSad):             15,
	normMoodPair(models.MoodTired, models.MoodTired):         15,
	normMoodPair(models.MoodOverwhelmed, models.MoodTired):   15,
	normMoodPair(models.MoodAnxious, models.MoodAnxious):     14,
	normMoodPair(models.MoodAngry, models.MoodAngry):         12,
}

// MoodScore scores the mood pairing (max 25, baseline 10)
func MoodScore(a, b models.Mood) int {
	if score, ok := moodScores[normMoodPair(a, b)]; ok {
		return score
	}
	return defaultMoodScore
}

// LanguageScore: case-insensitive exact match or nothing (max 20)
func LanguageScore(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	if strings.EqualFold(a, b) {
		return maxLanguageScore
	}
	return 0
}

// offsetReference pins named-zone offset lookups to a fixed instant so the
// scorer stays deterministic across DST boundaries.
var offsetReference = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

// utcOffsetHours derives a zone label's numeric UTC offset. Supports explicit
// "UTC±N" / "UTC±N:MM" labels and named-zone lookup; unparseable zones
// default to 0.
func utcOffsetHours(zone string) float64 {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return 0
	}

	upper := strings.ToUpper(zone)
	if upper == "UTC" || upper == "GMT" {
		return 0
	}

	if strings.HasPrefix(upper, "UTC+") || strings.HasPrefix(upper, "UTC-") {
		sign := 1.0
		if upper[3] == '-' {
			sign = -1.0
		}
		rest := upper[4:]

		hoursPart := rest
		minutesPart := ""
		if idx := strings.Index(rest, ":"); idx >= 0 {
			hoursPart = rest[:idx]
			minutesPart = rest[idx+1:]
		}

		hours, err := strconv.Atoi(hoursPart)
		if err != nil {
			return 0
		}
		offset := float64(hours)
		if minutesPart != "" {
			if minutes, err := strconv.Atoi(minutesPart); err == nil {
				offset += float64(minutes) / 60.0
			}
		}
		return sign * offset
	}

	// Named-zone lookup (e.g. "Asia/Kolkata")
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return 0
	}
	_, offsetSeconds := offsetReference.In(loc).Zone()
	return float64(offsetSeconds) / 3600.0
}

// TimezoneScore scores timezone proximity (max 10): identical label 10,
// offset gap ≤3h 7, ≤6h 3, else 0
func TimezoneScore(a, b string) int {
	if a != "" && strings.EqualFold(a, b) {
		return maxTimezoneScore
	}

	diff := utcOffsetHours(a) - utcOffsetHours(b)
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff <= 3:
		return 7
	case diff <= 6:
		return 3
	default:
		return 0
	}
}

// TopicScore scores shared-topic overlap (max 5). Zero when either side
// listed no topics; otherwise shared / max(lenA, lenB) * 5, case-insensitive.
func TopicScore(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, topic := range a {
		setA[strings.ToLower(strings.TrimSpace(topic))] = struct{}{}
	}

	setB := make(map[string]struct{}, len(b))
	for _, topic := range b {
		setB[strings.ToLower(strings.TrimSpace(topic))] = struct{}{}
	}

	shared := 0
	for topic := range setA {
		if _, ok := setB[topic]; ok {
			shared++
		}
	}

	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}

	return int(float64(shared) / float64(larger) * float64(maxTopicScore))
}

// CompatibilityScore computes the full 0-100 score between two match requests
func CompatibilityScore(a, b *models.MatchRequest) int {
	total := IntentScore(a.Intent, b.Intent) +
		MoodScore(a.Mood, b.Mood) +
		LanguageScore(a.Language, b.Language) +
		TimezoneScore(a.Timezone, b.Timezone) +
		TopicScore(a.Topics, b.Topics)

	if total > MaxCompatibilityScore {
		return MaxCompatibilityScore
	}
	return total
}
