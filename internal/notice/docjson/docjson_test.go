package docjson

import "testing"

func TestGetWalksNestedObjects(t *testing.T) {
	doc, err := Decode([]byte(`{"OBJET":{"CARACTERISTIQUES":{"VALEUR":{"#text":"1500000"}}}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got := doc.Get("OBJET", "CARACTERISTIQUES", "VALEUR", "#text").Text(); got != "1500000" {
		t.Fatalf("expected nested text, got %q", got)
	}
	if doc.Get("OBJET", "ABSENT", "VALEUR").Exists() {
		t.Fatal("expected absent path to not exist")
	}
	if doc.Get("OBJET", "CARACTERISTIQUES", "VALEUR", "#text", "deeper").Exists() {
		t.Fatal("expected walking through a scalar to yield absent")
	}
}

func TestListCoercesSingleObjectToOneElement(t *testing.T) {
	single, err := Decode([]byte(`{"LOT":{"NUM":"1"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	items := single.Get("LOT").List()
	if len(items) != 1 {
		t.Fatalf("expected single object coerced to 1 element, got %d", len(items))
	}
	if got := items[0].Get("NUM").Text(); got != "1" {
		t.Fatalf("expected lot num 1, got %q", got)
	}

	multi, err := Decode([]byte(`{"LOT":[{"NUM":"1"},{"NUM":"2"},null]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	items = multi.Get("LOT").List()
	if len(items) != 2 {
		t.Fatalf("expected nulls dropped from list, got %d elements", len(items))
	}

	if Absent().List() != nil {
		t.Fatal("expected absent value to list as nil")
	}
}

func TestOrPicksFirstPresentValue(t *testing.T) {
	doc, err := Decode([]byte(`{"INTITULE":"","DESCRIPTION":"fallback"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	// INTITULE exists as a key but is blank; the chain must skip past it.
	got, ok := doc.Get("INTITULE").Or(doc.Get("DESCRIPTION")).String()
	if !ok || got != "fallback" {
		t.Fatalf("expected blank-or-missing to fall back, got (%q, %v)", got, ok)
	}
}

func TestNumberToleratesStringsAndFrenchCommas(t *testing.T) {
	doc, err := Decode([]byte(`{"a":1500000,"b":"2500000,50","c":"1 500 000","d":"oui"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got, ok := doc.Get("a").Number(); !ok || got != 1500000 {
		t.Fatalf("expected json number to pass through, got (%v, %v)", got, ok)
	}
	if got, ok := doc.Get("b").Number(); !ok || got != 2500000.50 {
		t.Fatalf("expected comma decimal to parse, got (%v, %v)", got, ok)
	}
	if got, ok := doc.Get("c").Number(); !ok || got != 1500000 {
		t.Fatalf("expected grouped digits to parse, got (%v, %v)", got, ok)
	}
	if _, ok := doc.Get("d").Number(); ok {
		t.Fatal("expected non-numeric string to be absent")
	}
}
