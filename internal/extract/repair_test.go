package extract

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseReplyStrictAndWrapped(t *testing.T) {
	t.Parallel()

	bare := `{"has_metrics": true, "influencer_name": "testuser", "followers_count": 45000}`
	wrapped := "Sure, here it is: " + bare + " Hope this helps!"

	fromBare, err := ParseReply(bare)
	if err != nil {
		t.Fatalf("ParseReply(bare) error: %v", err)
	}

	fromWrapped, err := ParseReply(wrapped)
	if err != nil {
		t.Fatalf("ParseReply(wrapped) error: %v", err)
	}

	if !reflect.DeepEqual(fromBare, fromWrapped) {
		t.Fatalf("wrapped reply parsed differently:\nbare:    %+v\nwrapped: %+v", fromBare, fromWrapped)
	}
	if !fromWrapped.HasMetrics || fromWrapped.InfluencerName != "testuser" {
		t.Fatalf("unexpected candidate: %+v", fromWrapped)
	}
}

func TestParseReplyNestedBraces(t *testing.T) {
	t.Parallel()

	reply := `The result follows.
{"has_metrics": true, "recent_posts": [{"post_id": "abc", "likes": 100}], "influencer_name": "x{y}"}
Anything else?`

	c, err := ParseReply(reply)
	if err != nil {
		t.Fatalf("ParseReply error: %v", err)
	}
	if len(c.RecentPosts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(c.RecentPosts))
	}
	if c.InfluencerName != "x{y}" {
		t.Fatalf("braces inside strings mishandled: %q", c.InfluencerName)
	}
}

func TestParseReplyNoBraceBlock(t *testing.T) {
	t.Parallel()

	_, err := ParseReply("I could not find any metrics in that message, sorry!")
	if err == nil {
		t.Fatal("expected parse error")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Raw == "" {
		t.Fatal("parse error should retain the raw reply")
	}
}

func TestParseReplyInvalidBlock(t *testing.T) {
	t.Parallel()

	_, err := ParseReply(`prefix {"has_metrics": } suffix`)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
}

func TestContainsSignal(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want bool
	}{
		{"keyword likes", "my last post got some likes", true},
		{"abbreviated count", "around 45k followers now", true},
		{"grouped number", "it reached 12,500 people", true},
		{"post url", "here https://www.instagram.com/p/DKWmrCONQqs/", true},
		{"misspelled metric", "2341 liks on the new one", true},
		{"plain chat", "hey! when is the deadline for the campaign?", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ContainsSignal(tc.text); got != tc.want {
				t.Fatalf("ContainsSignal(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}
