// Package router decides the execution strategy for one user turn: the fixed
// analytic tool registry, the code-execution backend, or web-grounded
// generation. The decision policy is an ordered guard list so each rule's
// precedence is auditable and testable on its own.
package router

import "strings"

// Decision is the strategy pair for a turn. UseTools and UseCodeExecution are
// mutually exclusive; both false means grounded generation handles the turn.
type Decision struct {
	UseTools         bool
	UseCodeExecution bool
}

// Input is everything the classifier looks at for one turn.
type Input struct {
	// Utterance is the trimmed latest user message.
	Utterance string
	// DatasetLoaded reports whether rows are already loaded in the session.
	DatasetLoaded bool
	// DatasetAttached reports whether this turn carried a usable dataset.
	DatasetAttached bool
	// RawAttachmentPending reports a raw CSV/JSON upload arriving this turn.
	RawAttachmentPending bool
	// HasImages reports attached image files.
	HasImages bool
	// LastAssistantText is the most recent assistant turn, for retry detection.
	LastAssistantText string
}

// Route evaluates the guard list in precedence order. The classifier always
// produces a decision; ambiguity favors tool execution over code execution
// and code execution over open generation.
func Route(in Input) Decision {
	utterance := strings.TrimSpace(in.Utterance)

	pythonOnly := isPythonOnly(utterance)
	codeWanted := wantsCode(utterance)
	imageWanted := wantsImage(utterance)
	timePlot := asksTimePlot(utterance)
	imagey := mentionsImages(utterance)

	// Image operations always win: image synthesis has no code-execution
	// equivalent, so this path must never fall through to Python.
	forceTools := imageWanted ||
		in.HasImages ||
		isImageRetry(utterance, in.LastAssistantText)
	if forceTools {
		return Decision{UseTools: true}
	}

	datasetAvailable := in.DatasetLoaded || in.DatasetAttached

	useTools := datasetAvailable &&
		!pythonOnly &&
		(!codeWanted || imagey || timePlot) &&
		!(in.RawAttachmentPending && !imageWanted && !in.HasImages)

	useCode := !useTools &&
		(pythonOnly ||
			(codeWanted && in.DatasetLoaded && !imagey && !timePlot))

	return Decision{UseTools: useTools, UseCodeExecution: useCode}
}
