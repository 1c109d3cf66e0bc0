package metadata

import "testing"

func TestLookupRegion(t *testing.T) {
	tests := []struct {
		name      string
		wantOK    bool
		partition string
		display   string
	}{
		{"us-east-1", true, "aws", "US East (N. Virginia)"},
		{" EU-WEST-1 ", true, "aws", "Europe (Ireland)"},
		{"cn-north-1", true, "aws-cn", "China (Beijing)"},
		{"us-gov-west-1", true, "aws-us-gov", "AWS GovCloud (US-West)"},
		{"ap-southeast-9", true, "aws", ""},
		{"us-iso-east-1", true, "aws-iso", ""},
		{"us-isob-east-1", true, "aws-iso-b", ""},
		{"eu-isoe-west-1", true, "aws-iso-e", ""},
		{"", false, "", ""},
		{"(UNKNOWN)", false, "", ""},
		{"<html>", false, "", ""},
		{"useast1", false, "", ""},
		{"us-east", false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LookupRegion(tt.name)
			if ok != tt.wantOK {
				t.Fatalf("LookupRegion(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Partition != tt.partition {
				t.Errorf("Partition = %q, want %q", got.Partition, tt.partition)
			}
			if got.DisplayName != tt.display {
				t.Errorf("DisplayName = %q, want %q", got.DisplayName, tt.display)
			}
			if got.String() != got.Name {
				t.Errorf("String() = %q, want %q", got.String(), got.Name)
			}
		})
	}
}
