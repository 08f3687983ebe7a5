package domain

import "testing"

func TestCategoryRoundTrip(t *testing.T) {
	t.Parallel()

	for _, c := range []Category{CategoryPaper, CategoryBlog, CategoryTweet} {
		parsed, err := ParseCategory(c.String())
		if err != nil {
			t.Fatalf("ParseCategory(%s): %v", c, err)
		}
		if parsed != c {
			t.Fatalf("round trip: %v != %v", parsed, c)
		}
	}

	if _, err := ParseCategory("podcast"); err == nil {
		t.Fatal("unknown category must error")
	}
}

func TestAuthorsLine(t *testing.T) {
	t.Parallel()

	cases := []struct {
		item ContentItem
		want string
	}{
		{ContentItem{}, ""},
		{ContentItem{Authors: []string{"Jane Doe"}}, "Jane Doe"},
		{ContentItem{Authors: []string{"Jane Doe", "", "John Roe"}}, "Jane Doe, John Roe"},
		{ContentItem{Organizations: []string{"DeepMind"}}, "DeepMind"},
		{
			ContentItem{Authors: []string{"Jane Doe"}, Organizations: []string{"DeepMind", "MIT"}},
			"Jane Doe (DeepMind, MIT)",
		},
	}

	for _, tc := range cases {
		if got := tc.item.AuthorsLine(); got != tc.want {
			t.Fatalf("AuthorsLine() = %q, want %q", got, tc.want)
		}
	}
}
