package sentiment

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	input = urlPattern.ReplaceAllString(input, "")

	return input
}

func ConvertMarkdownToText(input string) string {
	// No smartypants: contractions must keep their apostrophes for the
	// negation rules. Renderers carry per-document state, so one per call.
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{})
	output := blackfriday.Run([]byte(input),
		blackfriday.WithNoExtensions(),
		blackfriday.WithRenderer(renderer))
	plainText := tagPattern.ReplaceAllString(string(output), " ")
	plainText = html.UnescapeString(plainText)
	plainText = strings.Join(strings.Fields(plainText), " ")

	return RemoveLinks(plainText)
}

// VaderScorer scores text with the VADER compound score, which lies in [-1, 1].
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderScorer) Name() string { return "vader" }

func (v *VaderScorer) Score(_ context.Context, text string) (score float64, err error) {
	if !utf8.ValidString(text) {
		return 0, fmt.Errorf("%w: text is not valid UTF-8", ErrScoringFailed)
	}

	plainText := ConvertMarkdownToText(text)
	if strings.TrimSpace(plainText) == "" {
		return 0, nil
	}

	defer func() {
		if r := recover(); r != nil {
			score = 0
			err = fmt.Errorf("%w: analyzer panicked: %v", ErrScoringFailed, r)
		}
	}()

	return v.analyzer.PolarityScores(plainText).Compound, nil
}
