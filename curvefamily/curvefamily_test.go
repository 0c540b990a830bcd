package curvefamily

import "testing"

func TestAllFamiliesRegistered(t *testing.T) {
	want := []string{"bls12_377", "bls12_381", "bn254", "bn_382", "tweedle"}
	all := All()
	if len(all) != len(want) {
		t.Fatalf("got %d families, want %d", len(all), len(want))
	}
	for i, f := range all {
		if f.Name() != want[i] {
			t.Errorf("family %d = %q, want %q", i, f.Name(), want[i])
		}
	}
}

func TestPrefixesDistinctWithinFamily(t *testing.T) {
	for _, f := range All() {
		seen := map[string]bool{}
		for _, g := range f.Groups() {
			p := g.Prefix()
			if seen[p] {
				t.Errorf("family %s: duplicate prefix %q", f.Name(), p)
			}
			seen[p] = true
		}
	}
}

func TestTweedleSwapsFieldsBetweenGroups(t *testing.T) {
	fam, ok := Get("tweedle")
	if !ok {
		t.Fatal("tweedle not registered")
	}
	groups := fam.Groups()
	var dee, dum Group
	for _, g := range groups {
		switch g.PointName {
		case "Dee":
			dee = g
		case "Dum":
			dum = g
		}
	}
	if dee.Base.Name != "Fq" || dee.Scalar.Name != "Fp" {
		t.Errorf("Dee = base %s scalar %s, want base Fq scalar Fp", dee.Base.Name, dee.Scalar.Name)
	}
	if dum.Base.Name != "Fp" || dum.Scalar.Name != "Fp" {
		t.Errorf("Dum = base %s scalar %s, want base Fp scalar Fp", dum.Base.Name, dum.Scalar.Name)
	}
	if fam.HasFp2() {
		t.Error("tweedle must not use an Fp2 prelude")
	}
}

func TestBN382HasThreeGroups(t *testing.T) {
	fam, _ := Get("bn_382")
	groups := fam.Groups()
	if len(groups) != 3 {
		t.Fatalf("bn_382 has %d groups, want 3", len(groups))
	}
}

func TestBLSTRSMarkerOnlyOnBLS12381(t *testing.T) {
	fam, _ := Get("bls12_381")
	if fam.BLSTRS() {
		t.Error("default bls12_381 registration must not have blstrs enabled")
	}
	withBLSTRS := WithBLSTRS(fam)
	if !withBLSTRS.BLSTRS() {
		t.Error("WithBLSTRS must enable the marker")
	}
}
