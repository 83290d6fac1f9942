package errors

import "testing"

func TestValidateGlycanSequence(t *testing.T) {
	tests := []struct {
		name    string
		seq     string
		wantErr bool
	}{
		{"valid biantennary", "Gal(b1-4)GlcNAc(b1-2)Man(a1-3)[Gal(b1-4)GlcNAc(b1-2)Man(a1-6)]Man(b1-4)GlcNAc(b1-4)GlcNAc", false},
		{"valid single residue", "Gal", false},
		{"empty", "", true},
		{"whitespace", "Gal (b1-4)Glc", true},
		{"unbalanced bracket", "Gal(b1-4)[GlcNAc", true},
		{"unbalanced paren", "Gal(b1-4", true},
		{"close before open", "Gal]b1-4[", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGlycanSequence(tt.seq)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGlycanSequence(%q) error = %v, wantErr %v", tt.seq, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLinkage(t *testing.T) {
	valid := []string{"b1-4", "a1-3", "a2-6", "b1-?", "?1-4", "a2-3"}
	for _, l := range valid {
		if err := ValidateLinkage(l); err != nil {
			t.Errorf("ValidateLinkage(%q) unexpected error: %v", l, err)
		}
	}

	invalid := []string{"", "c1-4", "b3-4", "b1-0", "b14", "b1--4"}
	for _, l := range invalid {
		if err := ValidateLinkage(l); err == nil {
			t.Errorf("ValidateLinkage(%q) expected error", l)
		}
	}
}

func TestValidateDatasetName(t *testing.T) {
	if err := ValidateDatasetName("serum_igg"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, name := range []string{"", "a/b", ".hidden", "x\\y"} {
		if err := ValidateDatasetName(name); err == nil {
			t.Errorf("ValidateDatasetName(%q) expected error", name)
		}
	}
}

func TestValidateAccession(t *testing.T) {
	if err := ValidateAccession("G00026MO"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, id := range []string{"", "g00026mo", "G123AB", "X00026MO"} {
		if err := ValidateAccession(id); err == nil {
			t.Errorf("ValidateAccession(%q) expected error", id)
		}
	}
}
