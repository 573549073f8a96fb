package router

import "testing"

func TestRoute(t *testing.T) {
	cases := []struct {
		name string
		in   Input
		want Decision
	}{
		{
			name: "plain question with dataset goes to tools",
			in:   Input{Utterance: "what is the average view count?", DatasetLoaded: true},
			want: Decision{UseTools: true},
		},
		{
			name: "plain question without dataset is open generation",
			in:   Input{Utterance: "what is the average view count?"},
			want: Decision{},
		},
		{
			name: "python-only request goes to code",
			in:   Input{Utterance: "run a linear regression of views on likes", DatasetLoaded: true},
			want: Decision{UseCodeExecution: true},
		},
		{
			name: "histogram goes to code even with dataset",
			in:   Input{Utterance: "show a histogram of views", DatasetLoaded: true},
			want: Decision{UseCodeExecution: true},
		},
		{
			name: "code vocabulary with dataset goes to code",
			in:   Input{Utterance: "write python code to clean this data", DatasetLoaded: true},
			want: Decision{UseCodeExecution: true},
		},
		{
			name: "code vocabulary without dataset is open generation",
			in:   Input{Utterance: "write python code to clean data"},
			want: Decision{},
		},
		{
			name: "time plot rescues plot vocabulary back to tools",
			in:   Input{Utterance: "plot views over time", DatasetLoaded: true},
			want: Decision{UseTools: true},
		},
		{
			name: "image generation forces tools",
			in:   Input{Utterance: "generate an image of a sunset"},
			want: Decision{UseTools: true},
		},
		{
			name: "transform phrasing with attached photo forces tools",
			in:   Input{Utterance: "make this into a renaissance painting", HasImages: true},
			want: Decision{UseTools: true},
		},
		{
			name: "attached photo alone forces tools",
			in:   Input{Utterance: "what do you think?", HasImages: true},
			want: Decision{UseTools: true},
		},
		{
			name: "raw upload without a question defers tool use",
			in:   Input{Utterance: "here is my data", DatasetAttached: true, RawAttachmentPending: true},
			want: Decision{},
		},
		{
			name: "upload plus analytic question still uses tools next turn",
			in:   Input{Utterance: "which video has the most views?", DatasetLoaded: true},
			want: Decision{UseTools: true},
		},
		{
			name: "short affirmative after failed image retries image",
			in: Input{
				Utterance:         "yes",
				DatasetLoaded:     true,
				LastAssistantText: "image generation failed: rate limit; try again shortly",
			},
			want: Decision{UseTools: true},
		},
		{
			name: "short affirmative after normal reply stays on tools path",
			in: Input{
				Utterance:         "analyze the comments",
				DatasetLoaded:     true,
				LastAssistantText: "here are the stats you asked for",
			},
			want: Decision{UseCodeExecution: true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Route(tc.in)
			if got != tc.want {
				t.Fatalf("Route(%+v) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestDecisionMutuallyExclusive(t *testing.T) {
	utterances := []string{
		"generate an image of a cat",
		"run a regression",
		"plot views over time",
		"write a python script",
		"top 5 videos by engagement",
		"",
	}
	for _, u := range utterances {
		for _, loaded := range []bool{true, false} {
			d := Route(Input{Utterance: u, DatasetLoaded: loaded})
			if d.UseTools && d.UseCodeExecution {
				t.Fatalf("both strategies selected for %q (loaded=%v)", u, loaded)
			}
		}
	}
}

func TestWantsImage(t *testing.T) {
	if !wantsImage("draw a picture of my dog") {
		t.Fatalf("verb+noun should want image")
	}
	if wantsImage("picture the scene for me") {
		t.Fatalf("noun without verb should not want image")
	}
	if !wantsImage("turn this photo into a cartoon") {
		t.Fatalf("transform phrasing should want image")
	}
}

func TestIsImageRetry(t *testing.T) {
	failed := "the image generation failed: rate limit"
	if !isImageRetry("try again", failed) {
		t.Fatalf("short affirmative after failure should retry")
	}
	if isImageRetry("try again", "here are your stats") {
		t.Fatalf("retry needs a failed image in the last reply")
	}
	if isImageRetry("yes, and also compute the mean of views for me", failed) {
		t.Fatalf("long messages are not bare retries")
	}
}
