package placeholder

import (
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		token string
		want  Kind
	}{
		{"<%name%>", Text},
		{"<%revenue-chart1%>", Chart},
		{"<%table1%>", Table},
		{"<%quarterly table%>", Table},
		{"<%chart-of-table%>", Chart}, // chart wins over table
		{"<%Chart1%>", Text},          // case-sensitive
		{"<%TABLE%>", Text},
		{"<%%>", Text},
	}

	for _, tt := range tests {
		if got := Classify(tt.token); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestFind(t *testing.T) {
	got := Find("Hello <%name%>, meet <%name%> and <%other%>")
	want := []string{"<%name%>", "<%name%>", "<%other%>"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Find returned %v, want %v", got, want)
	}
}

func TestFindNonGreedy(t *testing.T) {
	got := Find("<%a%> filler <%b%>")
	if len(got) != 2 || got[0] != "<%a%>" || got[1] != "<%b%>" {
		t.Errorf("expected two separate matches, got %v", got)
	}
}

func TestFindMultiline(t *testing.T) {
	got := Find("start <%two\nline%> end")
	if len(got) != 1 || got[0] != "<%two\nline%>" {
		t.Errorf("expected match across line break, got %v", got)
	}
}

func TestFindNone(t *testing.T) {
	if got := Find("no tokens here, <% unterminated"); got != nil {
		t.Errorf("expected no matches, got %v", got)
	}
}

func TestIsToken(t *testing.T) {
	if !IsToken("<%table1%>") {
		t.Errorf("expected <%%table1%%> to be a whole token")
	}
	if IsToken("prefix <%table1%>") {
		t.Error("did not expect surrounding text to qualify")
	}
	if IsToken("") {
		t.Error("did not expect empty string to qualify")
	}
}
