package validation

import (
	"testing"
	"time"

	"github.com/mmeshcher/retail-orders-system/internal/model"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		pivot int
		want  time.Time
		valid bool
	}{
		{
			name:  "valid date current century",
			input: "01-Jan-17",
			pivot: DefaultPivotYear,
			want:  time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC),
			valid: true,
		},
		{
			name:  "valid date previous century",
			input: "15-Mar-85",
			pivot: DefaultPivotYear,
			want:  time.Date(1985, time.March, 15, 0, 0, 0, 0, time.UTC),
			valid: true,
		},
		{
			name:  "pivot boundary goes to 1900s",
			input: "01-Jan-69",
			pivot: DefaultPivotYear,
			want:  time.Date(1969, time.January, 1, 0, 0, 0, 0, time.UTC),
			valid: true,
		},
		{
			name:  "custom pivot",
			input: "01-Jan-17",
			pivot: 10,
			want:  time.Date(1917, time.January, 1, 0, 0, 0, 0, time.UTC),
			valid: true,
		},
		{
			name:  "day not zero padded",
			input: "1-Jan-17",
			pivot: DefaultPivotYear,
			valid: false,
		},
		{
			name:  "month in wrong case",
			input: "01-JAN-17",
			pivot: DefaultPivotYear,
			valid: false,
		},
		{
			name:  "unknown month",
			input: "01-Foo-17",
			pivot: DefaultPivotYear,
			valid: false,
		},
		{
			name:  "day out of range",
			input: "32-Jan-17",
			pivot: DefaultPivotYear,
			valid: false,
		},
		{
			name:  "day zero",
			input: "00-Jan-17",
			pivot: DefaultPivotYear,
			valid: false,
		},
		{
			name:  "nonexistent calendar day",
			input: "31-Feb-17",
			pivot: DefaultPivotYear,
			valid: false,
		},
		{
			name:  "wrong separators",
			input: "01/Jan/17",
			pivot: DefaultPivotYear,
			valid: false,
		},
		{
			name:  "empty string",
			input: "",
			pivot: DefaultPivotYear,
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input, tt.pivot)
			if tt.valid {
				if err != nil {
					t.Fatalf("ParseDate(%q) error: %v", tt.input, err)
				}
				if !got.Equal(tt.want) {
					t.Fatalf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
				}
			} else if err == nil {
				t.Fatalf("ParseDate(%q) = %v, want error", tt.input, got)
			}
		})
	}
}

func TestFormatDateRoundTrip(t *testing.T) {
	const s = "28-Feb-20"

	parsed, err := ParseDate(s, DefaultPivotYear)
	if err != nil {
		t.Fatalf("ParseDate(%q) error: %v", s, err)
	}
	if got := FormatDate(parsed); got != s {
		t.Fatalf("FormatDate = %q, want %q", got, s)
	}
}

func TestValidName(t *testing.T) {
	if !ValidName("Jane", "Doe") {
		t.Fatalf("expected non-empty name to be valid")
	}
	if ValidName("", "Doe") || ValidName("Jane", "") {
		t.Fatalf("expected empty name part to be invalid")
	}
}

func TestValidAddress(t *testing.T) {
	addr := model.Address{House: "12", Street: "High Street", City: "Coventry"}
	if !ValidAddress(addr) {
		t.Fatalf("expected complete address to be valid")
	}

	for _, incomplete := range []model.Address{
		{Street: "High Street", City: "Coventry"},
		{House: "12", City: "Coventry"},
		{House: "12", Street: "High Street"},
	} {
		if ValidAddress(incomplete) {
			t.Fatalf("expected address %+v to be invalid", incomplete)
		}
	}
}
