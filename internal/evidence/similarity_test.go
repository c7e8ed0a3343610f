package evidence

import "testing"

func TestTokenize(t *testing.T) {
	got := tokenize("The Earth is FLAT, to no-one's surprise!")
	want := []string{"earth", "flat", "one", "surprise"}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(got), got, len(want))
	}
	for _, w := range want {
		if _, ok := got[w]; !ok {
			t.Errorf("missing token %q in %v", w, got)
		}
	}
}

func TestTokenizeDropsShortAndStopWords(t *testing.T) {
	got := tokenize("is a an to of or in on it ab")
	if len(got) != 0 {
		t.Errorf("expected no tokens, got %v", got)
	}
}

func TestSimilarEnoughIdentical(t *testing.T) {
	if !similarEnough("earth flat claim", "earth flat claim", 0.75) {
		t.Error("identical strings should always match")
	}
}

func TestSimilarEnoughCaseAndPunctuation(t *testing.T) {
	if !similarEnough("Vaccines cause autism", "vaccines CAUSE autism!!!", 0.75) {
		t.Error("case and punctuation should not matter")
	}
}

func TestSimilarEnoughSingleSharedToken(t *testing.T) {
	// One shared token never passes, regardless of ratio.
	if similarEnough("covid vaccine", "covid travel", 0.1) {
		t.Error("single shared token should be rejected")
	}
}

func TestSimilarEnoughEmptySides(t *testing.T) {
	if similarEnough("", "earth flat claim", 0.1) {
		t.Error("empty token set should never match")
	}
	if similarEnough("earth flat claim", "the a is", 0.1) {
		t.Error("stop-word-only input should never match")
	}
}

func TestSimilarEnoughThreshold(t *testing.T) {
	// Sets {aaa,bbb,ccc} and {aaa,bbb}: 2 shared, union 3, ratio 0.667.
	a := "aaa bbb ccc"
	b := "aaa bbb"
	if !similarEnough(a, b, 0.65) {
		t.Error("ratio 0.667 should pass the 0.65 threshold")
	}
	if similarEnough(a, b, 0.75) {
		t.Error("ratio 0.667 should fail the 0.75 threshold")
	}
}

func TestSimilarEnoughSymmetric(t *testing.T) {
	a := "moon landing hoax staged hollywood"
	b := "moon landing was staged"
	if similarEnough(a, b, 0.5) != similarEnough(b, a, 0.5) {
		t.Error("similarity should be symmetric")
	}
}

func TestNormalizeRating(t *testing.T) {
	tests := []struct {
		rating string
		want   Bucket
	}{
		{"False", BucketFalse},
		{"Pants on Fire!", BucketFalse},
		{"Mostly False", BucketFalse},
		{"This claim is Not True", BucketFalse},
		{"Debunked", BucketFalse},
		{"Incorrect", BucketFalse},
		{"True", BucketTrue},
		{"Mostly True", BucketTrue},
		{"Correct Attribution", BucketTrue},
		{"Accurate", BucketTrue},
		{"Mixture", BucketMixed},
		{"Misleading", BucketMixed},
		{"Needs Context", BucketMixed},
		{"Unproven", BucketMixed},
		{"Four Pinocchios", BucketUnknown},
		{"", BucketUnknown},
		{"   ", BucketUnknown},
	}

	for _, tt := range tests {
		if got := NormalizeRating(tt.rating); got != tt.want {
			t.Errorf("NormalizeRating(%q) = %s, want %s", tt.rating, got, tt.want)
		}
	}
}

func TestNormalizeRatingFalsePrecedence(t *testing.T) {
	// "not true" contains "true"; the false list must win.
	if NormalizeRating("not true") != BucketFalse {
		t.Error("\"not true\" must bucket as false, not true")
	}
	if NormalizeRating("fake but accurate") != BucketFalse {
		t.Error("false keywords take precedence over true keywords")
	}
}
