package saju

import "strings"

// Element is one of the five fixed elements a birth encoding scores against.
type Element string

// The five elements, in their traditional generation order.
const (
	Wood  Element = "wood"
	Fire  Element = "fire"
	Earth Element = "earth"
	Metal Element = "metal"
	Water Element = "water"
)

// Elements lists the five elements in a stable order.
var Elements = []Element{Wood, Fire, Earth, Metal, Water}

// ElementScore maps each of the five elements to a non-negative score.
// Scores are additive and need not sum to 100.
type ElementScore map[Element]int

// rulePoints is the fixed increment one trigger rule adds to an element.
const rulePoints = 20

// Trigger symbol sets. The stem rule and the branch rule fire independently
// for each element, so a single element can score 0, 20 or 40.
var (
	stemTriggers = map[Element]string{
		Wood:  "甲乙",
		Fire:  "丙丁",
		Earth: "戊己",
		Metal: "庚辛",
		Water: "壬癸",
	}
	branchTriggers = map[Element]string{
		Wood:  "寅卯",
		Fire:  "巳午",
		Earth: "辰戌丑未",
		Metal: "申酉",
		Water: "亥子",
	}
)

// Score converts a solar birth date to its sexagenary encoding and scores
// the five elements against it. It is a pure function and never fails: an
// invalid or out-of-range date yields the ErrorEncoding sentinel with an
// all-zero score distribution.
func Score(birth BirthRecord) (string, ElementScore) {
	scores := ZeroScore()
	if !birth.Valid() {
		return ErrorEncoding, scores
	}

	encoding := encode(birth)
	for _, el := range Elements {
		if strings.ContainsAny(encoding, stemTriggers[el]) {
			scores[el] += rulePoints
		}
		if strings.ContainsAny(encoding, branchTriggers[el]) {
			scores[el] += rulePoints
		}
	}
	return encoding, scores
}

// ZeroScore returns an ElementScore with all five elements set to zero.
func ZeroScore() ElementScore {
	scores := make(ElementScore, len(Elements))
	for _, el := range Elements {
		scores[el] = 0
	}
	return scores
}
