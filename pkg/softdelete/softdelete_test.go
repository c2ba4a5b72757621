package softdelete_test

import (
	"testing"

	"github.com/jobport/jobport/pkg/softdelete"
)

func TestViewSQL(t *testing.T) {
	cases := []struct {
		view softdelete.View
		want string
	}{
		{softdelete.Active, "NOT p.is_removed"},
		{softdelete.Deleted, "p.is_removed"},
		{softdelete.Everything, "TRUE"},
	}
	for _, tc := range cases {
		if got := tc.view.SQL("p.is_removed"); got != tc.want {
			t.Errorf("View(%s).SQL = %q, want %q", tc.view, got, tc.want)
		}
	}
}

func TestParseView(t *testing.T) {
	cases := []struct {
		in      string
		want    softdelete.View
		wantErr bool
	}{
		{"", softdelete.Active, false},
		{"active", softdelete.Active, false},
		{"deleted", softdelete.Deleted, false},
		{"all", softdelete.Everything, false},
		{"everything", softdelete.Everything, false},
		{"archived", softdelete.Active, true},
	}
	for _, tc := range cases {
		got, err := softdelete.ParseView(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseView(%q) expected error, got nil", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseView(%q) returned unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseView(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
