package hangul

import "testing"

func TestSyllableStructure(t *testing.T) {
	tests := []struct {
		name    string
		r       rune
		final   bool
		open    bool
		nucleus string
		harmony HarmonyClass
	}{
		{name: "first block", r: '가', final: false, open: true, nucleus: "ㅏ", harmony: Bright},
		{name: "last block", r: '힣', final: true, open: false, nucleus: "ㅣ", harmony: Neutral},
		{name: "closed dark", r: '을', final: true, open: false, nucleus: "ㅡ", harmony: Dark},
		{name: "open i", r: '시', final: false, open: true, nucleus: "ㅣ", harmony: Neutral},
		{name: "open dark", r: '너', final: false, open: true, nucleus: "ㅓ", harmony: Dark},
		{name: "compound bright", r: '와', final: false, open: true, nucleus: "ㅘ", harmony: Bright},
		{name: "neutral e", r: '게', final: false, open: true, nucleus: "ㅔ", harmony: Neutral},
		{name: "latin letter", r: 'a', final: false, open: false, nucleus: "", harmony: Neutral},
		{name: "bare jamo", r: 'ㄱ', final: false, open: false, nucleus: "", harmony: Neutral},
		{name: "no character", r: 0, final: false, open: false, nucleus: "", harmony: Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasFinalConsonant(tt.r); got != tt.final {
				t.Errorf("HasFinalConsonant(%q) = %v, want %v", tt.r, got, tt.final)
			}
			if got := IsOpenSyllable(tt.r); got != tt.open {
				t.Errorf("IsOpenSyllable(%q) = %v, want %v", tt.r, got, tt.open)
			}
			if got := VowelNucleus(tt.r); got != tt.nucleus {
				t.Errorf("VowelNucleus(%q) = %q, want %q", tt.r, got, tt.nucleus)
			}
			if got := Harmony(tt.r); got != tt.harmony {
				t.Errorf("Harmony(%q) = %v, want %v", tt.r, got, tt.harmony)
			}
		})
	}
}

func TestVowelTableCoversAllNuclei(t *testing.T) {
	seen := make(map[string]bool)
	for r := rune(baseCodePoint); r <= lastCodePoint; r += trailingCount {
		seen[VowelNucleus(r)] = true
	}
	if len(seen) != medialCount {
		t.Fatalf("expected %d distinct nuclei, got %d", medialCount, len(seen))
	}
	if len(brightVowels)+len(darkVowels) >= medialCount {
		t.Fatalf("bright and dark sets must leave some vowels neutral")
	}
}
