package router

import (
	"regexp"
	"strings"
)

// Pattern tables, one per guard. Heuristic by nature: edge phrasings will
// misclassify, and the precedence in Route is what keeps that safe.
var (
	// Requests only the code backend can satisfy: statistical modeling and
	// chart types outside the tool registry, or named plotting libraries.
	pythonOnlyRe = regexp.MustCompile(`(?i)\b(regression|scatter|histogram|heat\s?map|distribution|forecast(ing)?|trend\s?line|correlat\w*|matplotlib|seaborn|plotly|sklearn|scikit)\b`)

	// Programming-adjacent vocabulary; only decisive when no rows are loaded.
	codeWantedRe = regexp.MustCompile(`(?i)\b(python|code|script|program|notebook|pandas|numpy|dataframe|plot|graph|compute|calculate|analy[sz]e)\b`)

	// Generation verbs combined with image nouns, or transformation phrasing
	// over an existing photo.
	imageVerbRe   = regexp.MustCompile(`(?i)\b(generate|create|draw|make|stylize|paint|render|turn)\b`)
	imageNounRe   = regexp.MustCompile(`(?i)\b(image|picture|photo|painting|portrait|illustration|drawing|art(work)?|sticker|avatar|wallpaper)\b`)
	transformRe   = regexp.MustCompile(`(?i)\b(into a|in the style of|looks? like a|as a)\b.*\b(painting|sketch|cartoon|anime|portrait|poster|photo)\b`)
	timePlotRe    = regexp.MustCompile(`(?i)\b(over time|time series|timeline|by (date|day|week|month|year)|per (day|week|month|year))\b`)
	imageRetryRe  = regexp.MustCompile(`(?i)^(yes|yeah|yep|ok|okay|sure|retry|again|try again|please do|do it)[\s\.\!]*$`)
	imageFailedRe = regexp.MustCompile(`(?i)image.*(fail|couldn't|could not|unable|rate limit|try again)`)
)

func isPythonOnly(utterance string) bool {
	return pythonOnlyRe.MatchString(utterance)
}

func wantsCode(utterance string) bool {
	return codeWantedRe.MatchString(utterance)
}

func wantsImage(utterance string) bool {
	if transformRe.MatchString(utterance) {
		return true
	}
	return imageVerbRe.MatchString(utterance) && imageNounRe.MatchString(utterance)
}

func mentionsImages(utterance string) bool {
	return imageNounRe.MatchString(utterance)
}

func asksTimePlot(utterance string) bool {
	return timePlotRe.MatchString(utterance)
}

// isImageRetry treats a short affirmative immediately after a failed image
// generation as a retry of that generation.
func isImageRetry(utterance, lastAssistantText string) bool {
	if len(utterance) > 24 || !imageRetryRe.MatchString(utterance) {
		return false
	}
	return imageFailedRe.MatchString(strings.ToLower(lastAssistantText))
}
