package langid

import "testing"

func TestCollapse(t *testing.T) {
	tests := []struct {
		code string
		want Tag
	}{
		{"tgl", Tagalog},
		{"eng", English},
		{"fra", English},
		{"cmn", English},
		{"", English},
	}
	for _, tc := range tests {
		if got := Collapse(tc.code); got != tc.want {
			t.Errorf("Collapse(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestWhatlang_Detect(t *testing.T) {
	d := Whatlang{}
	if got := d.Detect("How do I reset my account password after it expires?"); got != English {
		t.Errorf("Detect(english) = %q, want %q", got, English)
	}
	if got := d.Detect("Paano ko mababago ang aking password kapag nakalimutan ko ito?"); got != Tagalog {
		t.Errorf("Detect(tagalog) = %q, want %q", got, Tagalog)
	}
}
