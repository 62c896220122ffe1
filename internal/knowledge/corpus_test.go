package knowledge

import "testing"

func TestCorpus_IDsMatchPositions(t *testing.T) {
	c := NewCorpus()

	for i, item := range c.Items() {
		if item.ID != i {
			t.Errorf("document at position %d has ID %d", i, item.ID)
		}
	}
}

func TestCorpus_DocumentsComplete(t *testing.T) {
	c := NewCorpus()

	if c.Len() == 0 {
		t.Fatal("corpus must not be empty")
	}

	seen := make(map[string]bool)
	for _, item := range c.Items() {
		if item.Topic == "" {
			t.Errorf("document %d has empty topic", item.ID)
		}
		if seen[item.Topic] {
			t.Errorf("duplicate topic %q", item.Topic)
		}
		seen[item.Topic] = true

		if item.Category == "" {
			t.Errorf("document %d has empty category", item.ID)
		}
		if item.Content == "" {
			t.Errorf("document %d has empty content", item.ID)
		}
		if len(item.Tags) == 0 {
			t.Errorf("document %d has no tags", item.ID)
		}
	}
}

func TestCorpus_ContentsOrder(t *testing.T) {
	c := NewCorpus()

	contents := c.Contents()
	if len(contents) != c.Len() {
		t.Fatalf("expected %d contents, got %d", c.Len(), len(contents))
	}
	for i, text := range contents {
		if text != c.Items()[i].Content {
			t.Errorf("contents[%d] does not match document content", i)
		}
	}
}

func TestCorpus_DigestStable(t *testing.T) {
	a := NewCorpus().Digest()
	b := NewCorpus().Digest()

	if a == "" {
		t.Fatal("digest must not be empty")
	}
	if a != b {
		t.Errorf("digest not stable: %q vs %q", a, b)
	}
}

func TestCorpus_Topics(t *testing.T) {
	c := NewCorpus()

	topics := c.Topics()
	if len(topics) != c.Len() {
		t.Fatalf("expected %d topics, got %d", c.Len(), len(topics))
	}
	for i, info := range topics {
		if info.ID != i {
			t.Errorf("topic %d has ID %d", i, info.ID)
		}
		if info.Topic != c.Items()[i].Topic {
			t.Errorf("topic %d name mismatch", i)
		}
	}
}
