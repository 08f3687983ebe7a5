package oracle

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

type fakeChat struct {
	response string
	err      error
	calls    int
	lastReq  ports.ChatRequest
}

func (f *fakeChat) Chat(ctx context.Context, req ports.ChatRequest) (string, error) {
	f.calls++
	f.lastReq = req
	return f.response, f.err
}

func (f *fakeChat) ChatWithImages(ctx context.Context, model, prompt string, imagePaths []string) (string, error) {
	return "", errors.New("not used")
}

func testJudge(chat ports.ChatClient) *Judge {
	return NewJudge(Deps{
		Chat:       chat,
		Logger:     slog.New(slog.DiscardHandler),
		MinScore:   7,
		ScoreModel: "test-model",
	})
}

func testItem() domain.ContentItem {
	return domain.ContentItem{
		ContentID:  "2501.00001",
		Category:   domain.CategoryPaper,
		SourceName: "alphaxiv",
		Title:      "A Novel Approach",
		Summary:    "We propose a thing.",
	}
}

func TestScoreParsesVerdict(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{response: `Sure, here is my evaluation:
{"score": 8.5, "reason": "strong result", "publish": true}`}
	v := testJudge(chat).Score(context.Background(), testItem())

	if v.Score != 8.5 || !v.Publish {
		t.Fatalf("unexpected verdict: %+v", v)
	}
	if v.Reason != "strong result" {
		t.Fatalf("unexpected reason: %s", v.Reason)
	}
}

func TestScoreFailsClosedOnTransportError(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{err: errors.New("connection refused")}
	v := testJudge(chat).Score(context.Background(), testItem())

	if v.Publish {
		t.Fatal("transport error must not allow publishing")
	}
	if v.Score != 5.0 {
		t.Fatalf("expected neutral score 5.0, got %v", v.Score)
	}
}

func TestScoreFailsClosedOnGarbageResponse(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{response: "I think this paper is great!"}
	v := testJudge(chat).Score(context.Background(), testItem())

	if v.Publish {
		t.Fatal("unparseable response must not allow publishing")
	}
	if v.Reason != "Failed to parse oracle response" {
		t.Fatalf("unexpected reason: %s", v.Reason)
	}
}

func TestVerifyFailsOpen(t *testing.T) {
	t.Parallel()

	// Transport failure: content passes with low confidence.
	chat := &fakeChat{err: errors.New("timeout")}
	v := testJudge(chat).Verify(context.Background(), testItem())
	if !v.Verified {
		t.Fatal("a flaky judge must not suppress content")
	}
	if v.Confidence >= 0.5 {
		t.Fatalf("transport failure should carry low confidence, got %v", v.Confidence)
	}

	// Unparseable response: same, with medium confidence.
	chat = &fakeChat{response: "looks legit to me"}
	v = testJudge(chat).Verify(context.Background(), testItem())
	if !v.Verified || v.Confidence != 0.5 {
		t.Fatalf("unexpected fallback verdict: %+v", v)
	}
}

func TestVerifyParsesNegativeVerdict(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{response: `{"verified": false, "confidence": 0.9, "issues": "no primary source"}`}
	v := testJudge(chat).Verify(context.Background(), testItem())

	if v.Verified {
		t.Fatal("expected negative verdict")
	}
	if v.Confidence != 0.9 || v.Issues != "no primary source" {
		t.Fatalf("unexpected verdict: %+v", v)
	}
}

func TestIsDuplicateShortCircuitsOnEmptyHistory(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{response: `{"is_duplicate": true, "duplicate_of": "whatever"}`}
	v := testJudge(chat).IsDuplicate(context.Background(), testItem(), nil)

	if v.IsDuplicate {
		t.Fatal("empty history can never yield a duplicate")
	}
	if chat.calls != 0 {
		t.Fatalf("expected no backend calls, got %d", chat.calls)
	}
}

func TestIsDuplicateParsesMatch(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{response: `{"is_duplicate": true, "duplicate_of": "A Novel Approach (v2)"}`}
	v := testJudge(chat).IsDuplicate(context.Background(), testItem(), []string{"A Novel Approach (v2)", "Other"})

	if !v.IsDuplicate || v.DuplicateOf != "A Novel Approach (v2)" {
		t.Fatalf("unexpected verdict: %+v", v)
	}
	if chat.calls != 1 {
		t.Fatalf("expected one backend call, got %d", chat.calls)
	}
}

func TestIsDuplicateFallsBackToNotDuplicate(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{err: errors.New("rate limited")}
	v := testJudge(chat).IsDuplicate(context.Background(), testItem(), []string{"Other"})

	if v.IsDuplicate {
		t.Fatal("a failed duplicate check must not block publishing")
	}
}
