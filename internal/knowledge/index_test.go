package knowledge

import "testing"

func TestSearchOnEmptyIndexReturnsNil(t *testing.T) {
	idx := New()
	results := idx.Search("дроби", 2)
	if results != nil {
		t.Errorf("expected nil results on an empty index, got %v", results)
	}
}

func TestSearchRanksMoreRelevantDocumentFirst(t *testing.T) {
	idx := New()
	idx.LoadDocs([]string{
		"Дробь состоит из числителя и знаменателя. Дробь можно сокращать.",
		"Уравнение решается переносом слагаемых в другую часть.",
	}, []string{"fractions", "equations"})

	results := idx.Search("что такое дробь и числитель", 2)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Source != "fractions" {
		t.Errorf("expected fractions doc ranked first, got %q (score %v vs %v)",
			results[0].Source, results[0].Score, results[1].Score)
	}
}

func TestSearchRespectsTopK(t *testing.T) {
	idx := New()
	idx.LoadDocs([]string{"один текст", "второй текст", "третий текст"}, []string{"a", "b", "c"})

	results := idx.Search("текст", 1)
	if len(results) != 1 {
		t.Fatalf("expected topK=1 to return 1 result, got %d", len(results))
	}
}

func TestTokenizeDropsStopwords(t *testing.T) {
	toks := Tokenize("Это дробь, и она состоит из числителя.")
	for _, tok := range toks {
		if tok == "это" || tok == "и" {
			t.Errorf("expected stopword %q to be dropped", tok)
		}
	}
	found := false
	for _, tok := range toks {
		if tok == "дробь" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected content word 'дробь' to survive tokenization, got %v", toks)
	}
}
