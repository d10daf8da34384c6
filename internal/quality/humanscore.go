package quality

import "strings"

// aiCliches are phrases that completion models lean on far more than
// human writers do. Each occurrence costs points.
var aiCliches = []string{
	"in today's fast-paced world",
	"it's important to note",
	"it is important to note",
	"delve into",
	"delving into",
	"in the realm of",
	"unlock the potential",
	"unlock the power",
	"game-changer",
	"game changer",
	"embark on a journey",
	"rich tapestry",
	"navigate the landscape",
	"in the ever-evolving",
	"ever-evolving landscape",
	"a testament to",
	"when it comes to",
	"at the end of the day",
	"dive deep into",
	"revolutionize the way",
	"seamlessly integrate",
	"in conclusion,",
	"furthermore,",
	"moreover,",
}

// longSentenceThreshold is the average sentence length (in words) above
// which the score starts dropping.
const longSentenceThreshold = 22

// HumanScoreReport is the advisory "does this read like a person wrote
// it" heuristic. It never gates the pipeline.
type HumanScoreReport struct {
	Score          int      `json:"score"` // 0-100, higher reads more human
	ClichesFound   []string `json:"cliches_found,omitempty"`
	AvgSentenceLen float64  `json:"avg_sentence_len"`
}

// ScoreHumanWriting scans for AI-cliché phrases and penalizes inflated
// average sentence length.
func ScoreHumanWriting(html string) HumanScoreReport {
	text := StripTags(html)
	lower := strings.ToLower(text)

	report := HumanScoreReport{Score: 100}
	for _, phrase := range aiCliches {
		if n := strings.Count(lower, phrase); n > 0 {
			report.ClichesFound = append(report.ClichesFound, phrase)
			report.Score -= 5 * n
		}
	}

	words := len(strings.Fields(text))
	sentences := len(sentenceEndRegex.FindAllString(text, -1))
	if sentences > 0 && words > 0 {
		report.AvgSentenceLen = float64(words) / float64(sentences)
		if report.AvgSentenceLen > longSentenceThreshold {
			report.Score -= int(report.AvgSentenceLen-longSentenceThreshold) * 2
		}
	}

	if report.Score < 0 {
		report.Score = 0
	}
	return report
}
