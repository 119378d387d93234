package extractor

import (
	"testing"

	"cardscan-go/internal/types"
)

func cand(f types.FieldKey, v string, s types.Stage) types.Candidate {
	return types.Candidate{Field: f, Value: v, Stage: s}
}

func TestResolvePrecedence(t *testing.T) {
	cands := []types.Candidate{
		cand(types.FieldName, "Pattern Name", types.StagePattern),
		cand(types.FieldPhone, "111 222 3333", types.StagePattern),
		cand(types.FieldEmail, "p@x.com", types.StagePattern),
		cand(types.FieldName, "Entity Name", types.StageEntity),
		cand(types.FieldCompany, "Entity Co", types.StageEntity),
		cand(types.FieldPhone, "444", types.StageEntity),
		cand(types.FieldEmail, "e@x.com", types.StageEntity),
		cand(types.FieldCompany, "Later Co", types.StageEntity),
		cand(types.FieldJobTitle, "Engineer", types.StageLine),
		cand(types.FieldName, "Line Name", types.StageLine),
		cand(types.FieldPhone, "999", types.StageLine),
	}
	rec, sources := Resolve(PolicyOverwrite, cands)
	want := types.ContactRecord{
		Name:     "Pattern Name",
		Company:  "Entity Co",
		JobTitle: "Engineer",
		Phone:    "444",
		Email:    "e@x.com",
	}
	if rec != want {
		t.Fatalf("Resolve() = %+v, want %+v", rec, want)
	}
	if sources[types.FieldPhone] != types.StageEntity || sources[types.FieldName] != types.StagePattern {
		t.Fatalf("unexpected sources: %+v", sources)
	}
	if _, ok := sources[types.FieldAddress]; ok {
		t.Fatalf("empty field must have no source")
	}
}

func TestResolveNeverReverts(t *testing.T) {
	rec, _ := Resolve(PolicyOverwrite, []types.Candidate{
		cand(types.FieldEmail, "p@x.com", types.StagePattern),
		cand(types.FieldEmail, "", types.StageEntity),
	})
	if rec.Email != "p@x.com" {
		t.Fatalf("email reverted to %q", rec.Email)
	}
}

func TestResolveFillPolicy(t *testing.T) {
	rec, sources := Resolve(PolicyFill, []types.Candidate{
		cand(types.FieldPhone, "111 222 3333", types.StagePattern),
		cand(types.FieldPhone, "444", types.StageEntity),
		cand(types.FieldEmail, "e@x.com", types.StageEntity),
	})
	if rec.Phone != "111 222 3333" || sources[types.FieldPhone] != types.StagePattern {
		t.Fatalf("fill policy let entity overwrite phone: %+v", rec)
	}
	if rec.Email != "e@x.com" {
		t.Fatalf("fill policy must still fill empty email, got %q", rec.Email)
	}
}

func TestParseMergePolicy(t *testing.T) {
	for in, want := range map[string]MergePolicy{"": PolicyOverwrite, "Overwrite": PolicyOverwrite, " fill ": PolicyFill} {
		got, err := ParseMergePolicy(in)
		if err != nil || got != want {
			t.Fatalf("ParseMergePolicy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMergePolicy("random"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
