package signals

import (
	"context"
	"reflect"
	"testing"
)

// TestOfficerCrossReference_CleanOfficer verifies a matched officer with
// no red flags reports connections only.
func TestOfficerCrossReference_CleanOfficer(t *testing.T) {
	src := NewDemoOfficerSource()

	rec, err := src.CrossReference(context.Background(), "My New Entity", []string{"John Smith"})
	if err != nil {
		t.Fatalf("CrossReference: %v", err)
	}
	if len(rec.Officers) != 1 {
		t.Fatalf("Officers = %d, want 1", len(rec.Officers))
	}

	p := rec.Officers[0]
	if p.MatchedName != "John Smith" {
		t.Errorf("MatchedName = %q", p.MatchedName)
	}
	if p.TotalEntities != 3 || p.ActiveEntities != 2 {
		t.Errorf("entities = %d total / %d active, want 3/2", p.TotalEntities, p.ActiveEntities)
	}
	if !rec.HasSharedOfficers || rec.TotalEntitiesConnected != 3 {
		t.Errorf("connections = %d, HasSharedOfficers = %v", rec.TotalEntitiesConnected, rec.HasSharedOfficers)
	}
	if rec.HasProblematicOfficers {
		t.Error("HasProblematicOfficers should be false for John Smith")
	}
	if len(rec.RiskIndicators) != 0 {
		t.Errorf("RiskIndicators = %v, want none", rec.RiskIndicators)
	}
}

// TestOfficerCrossReference_ProblematicOfficer verifies the full
// indicator set for an officer with offshore ties and license issues.
func TestOfficerCrossReference_ProblematicOfficer(t *testing.T) {
	src := NewDemoOfficerSource()

	rec, err := src.CrossReference(context.Background(), "My New Entity", []string{"Michael Johnson"})
	if err != nil {
		t.Fatalf("CrossReference: %v", err)
	}

	want := []string{
		"offshore_connections:2",
		"po_box_address",
		"regulatory_issues:suspended",
		"serial_entity_creator:3",
	}
	if !reflect.DeepEqual(rec.RiskIndicators, want) {
		t.Errorf("RiskIndicators = %v, want %v", rec.RiskIndicators, want)
	}
	if !rec.HasProblematicOfficers {
		t.Error("HasProblematicOfficers should be true")
	}
}

// TestOfficerCrossReference_ExcludesOwnEntity verifies the searched
// entity is not counted among an officer's connections.
func TestOfficerCrossReference_ExcludesOwnEntity(t *testing.T) {
	src := NewDemoOfficerSource()

	rec, err := src.CrossReference(context.Background(), "Sunshine Holdings LLC", []string{"John Smith"})
	if err != nil {
		t.Fatalf("CrossReference: %v", err)
	}
	if rec.TotalEntitiesConnected != 2 {
		t.Errorf("TotalEntitiesConnected = %d, want 2 (own entity excluded)", rec.TotalEntitiesConnected)
	}
	for _, e := range rec.Officers[0].ConnectedEntities {
		if e == "Sunshine Holdings LLC" {
			t.Error("ConnectedEntities should not include the searched entity")
		}
	}
}

// TestOfficerCrossReference_NoOfficers verifies the signal is absent
// when no officers were provided.
func TestOfficerCrossReference_NoOfficers(t *testing.T) {
	src := NewDemoOfficerSource()

	rec, err := src.CrossReference(context.Background(), "My New Entity", nil)
	if err != nil {
		t.Fatalf("CrossReference: %v", err)
	}
	if rec != nil {
		t.Errorf("record = %+v, want nil without officers", rec)
	}
}

// TestOfficerCrossReference_UnknownOfficer verifies unmatched officers
// yield an empty cross-reference.
func TestOfficerCrossReference_UnknownOfficer(t *testing.T) {
	src := NewDemoOfficerSource()

	rec, err := src.CrossReference(context.Background(), "My New Entity", []string{"Zelda Nobody"})
	if err != nil {
		t.Fatalf("CrossReference: %v", err)
	}
	if len(rec.Officers) != 0 || rec.HasSharedOfficers {
		t.Errorf("record = %+v, want no matches", rec)
	}
}

// TestFindOfficer_NameVariations verifies titles, initials, and listed
// variations all resolve to the registry entry.
func TestFindOfficer_NameVariations(t *testing.T) {
	cases := []string{
		"John Smith",
		"Dr. John Smith",
		"john smith jr",
		"Mike Johnson",
	}
	wantNames := []string{"John Smith", "John Smith", "John Smith", "Michael Johnson"}

	for i, name := range cases {
		match, confidence := findOfficer(name)
		if match == nil {
			t.Errorf("findOfficer(%q) = nil, want a match", name)
			continue
		}
		if match.Name != wantNames[i] {
			t.Errorf("findOfficer(%q) = %q, want %q", name, match.Name, wantNames[i])
		}
		if confidence < officerMatchThreshold {
			t.Errorf("findOfficer(%q) confidence = %v, below threshold", name, confidence)
		}
	}
}

// TestNormalizeName verifies title, suffix, and punctuation stripping.
func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Dr. John Smith Jr", "john smith"},
		{"Sarah Martinez-Williams", "sarah martinez williams"},
		{"  Mr. Bob   Jones  ", "bob jones"},
	}

	for _, tc := range cases {
		if got := normalizeName(tc.in); got != tc.want {
			t.Errorf("normalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// TestNameSimilarity verifies ordering invariance and the dissimilar
// floor.
func TestNameSimilarity(t *testing.T) {
	if got := nameSimilarity("john smith", "smith john"); got != 1 {
		t.Errorf("token-sorted identical names = %v, want 1", got)
	}
	if got := nameSimilarity("john smith", "patricia gonzalez"); got >= officerMatchThreshold {
		t.Errorf("dissimilar names = %v, should be below threshold", got)
	}
	if got := nameSimilarity("", "john"); got != 0 {
		t.Errorf("empty name = %v, want 0", got)
	}
}
