package condition

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCleanup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "  모음뒤  ", want: "모음뒤"},
		{in: "'모음뒤'에서쓰일때", want: "모음뒤"},
		{in: "‘자음뒤’일때", want: "자음뒤"},
		{in: "\"양성모음뒤\" 에서쓸때", want: "양성모음뒤"},
		{in: "모음뒤 and 자음뒤", want: "모음뒤and자음뒤"},
		{in: "음성모음뒤\t쓸때", want: "음성모음뒤"},
	}
	for _, tt := range tests {
		if got := Cleanup(tt.in); got != tt.want {
			t.Errorf("Cleanup(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Expr
	}{
		{name: "empty", text: "", want: nil},
		{name: "only phrase", text: "일때", want: nil},
		{
			name: "single",
			text: "모음뒤",
			want: Expr{{{Predicate: VowelFinal, Name: "모음뒤"}}},
		},
		{
			name: "or of and",
			text: "모음뒤 and 양성모음뒤 OR 자음뒤",
			want: Expr{
				{{Predicate: VowelFinal, Name: "모음뒤"}, {Predicate: BrightVowelFinal, Name: "양성모음뒤"}},
				{{Predicate: ConsonantFinal, Name: "자음뒤"}},
			},
		},
		{
			name: "mixed case keywords",
			text: "ㅣ모음뒤Or음성모음뒤AND모음뒤",
			want: Expr{
				{{Predicate: IVowelFinal, Name: "ㅣ모음뒤"}},
				{{Predicate: DarkVowelFinal, Name: "음성모음뒤"}, {Predicate: VowelFinal, Name: "모음뒤"}},
			},
		},
		{
			name: "aliases",
			text: "중성모음ㅣ뒤 or ㅣ외모음뒤 or vowel-final",
			want: Expr{
				{{Predicate: IVowelFinal, Name: "중성모음ㅣ뒤"}},
				{{Predicate: NonIVowelFinal, Name: "ㅣ외모음뒤"}},
				{{Predicate: VowelFinal, Name: "vowel-final"}},
			},
		},
		{
			name: "unknown predicate",
			text: "받침뒤",
			want: Expr{{{Predicate: Unknown, Name: "받침뒤"}}},
		},
		{
			name: "dangling keywords dropped",
			text: "or 모음뒤 and",
			want: Expr{{{Predicate: VowelFinal, Name: "모음뒤"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestPredicateHolds(t *testing.T) {
	tests := []struct {
		name string
		pred Predicate
		prev rune
		want bool
	}{
		{name: "consonant-final on closed", pred: ConsonantFinal, prev: '을', want: true},
		{name: "consonant-final on open", pred: ConsonantFinal, prev: '가', want: false},
		{name: "vowel-final on open", pred: VowelFinal, prev: '가', want: true},
		{name: "vowel-final on closed", pred: VowelFinal, prev: '을', want: false},
		{name: "vowel-final on nothing", pred: VowelFinal, prev: 0, want: false},
		{name: "vowel-final on latin", pred: VowelFinal, prev: 'a', want: false},
		{name: "bright open", pred: BrightVowelFinal, prev: '보', want: true},
		{name: "bright closed", pred: BrightVowelFinal, prev: '봄', want: false},
		{name: "bright on dark", pred: BrightVowelFinal, prev: '부', want: false},
		{name: "dark open", pred: DarkVowelFinal, prev: '부', want: true},
		{name: "dark on neutral", pred: DarkVowelFinal, prev: '시', want: false},
		{name: "i open", pred: IVowelFinal, prev: '시', want: true},
		{name: "i closed", pred: IVowelFinal, prev: '십', want: false},
		{name: "non-i open", pred: NonIVowelFinal, prev: '가', want: true},
		{name: "non-i on i", pred: NonIVowelFinal, prev: '시', want: false},
		{name: "non-i on nothing", pred: NonIVowelFinal, prev: 0, want: false},
		{name: "unknown never holds", pred: Unknown, prev: '가', want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred.Holds(tt.prev); got != tt.want {
				t.Errorf("%v.Holds(%q) = %v, want %v", tt.pred, tt.prev, got, tt.want)
			}
		})
	}
}

func TestExprEvalAt(t *testing.T) {
	text := []rune("가다을다")

	if !Expr(nil).EvalAt(text, 0) {
		t.Error("empty expression must hold")
	}

	vowel := Parse("모음뒤")
	if !vowel.EvalAt(text, 1) {
		t.Error("모음뒤 should hold after 가")
	}
	if vowel.EvalAt(text, 3) {
		t.Error("모음뒤 should not hold after 을")
	}
	if vowel.EvalAt(text, 0) {
		t.Error("모음뒤 should not hold at start of text")
	}

	either := Parse("자음뒤 or 모음뒤")
	if !either.EvalAt(text, 1) || !either.EvalAt(text, 3) {
		t.Error("disjunction should hold after both syllables")
	}

	both := Parse("모음뒤 and 음성모음뒤")
	if both.EvalAt(text, 1) {
		t.Error("가 is not dark; conjunction should fail")
	}

	withUnknown := Parse("모음뒤 and 받침뒤 or 자음뒤")
	if withUnknown.EvalAt(text, 1) {
		t.Error("unknown predicate must deny its conjunction")
	}
	if !withUnknown.EvalAt(text, 3) {
		t.Error("other conjunctions still apply")
	}
	if diff := cmp.Diff([]string{"받침뒤"}, withUnknown.UnknownNames()); diff != "" {
		t.Errorf("UnknownNames mismatch (-want +got):\n%s", diff)
	}
}

func TestExprString(t *testing.T) {
	got := Parse("'vowel-final and 양성모음뒤' or 자음뒤일때").String()
	want := "모음뒤 and 양성모음뒤 or 자음뒤"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
