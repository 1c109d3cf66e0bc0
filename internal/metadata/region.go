package metadata

import (
	"regexp"
	"strings"
)

// Region is a resolved AWS region.
type Region struct {
	Name        string
	Partition   string
	DisplayName string
}

// String returns the region's system name.
func (r Region) String() string {
	return r.Name
}

// regionPattern matches well-formed region names such as us-east-1,
// us-gov-west-1 or us-isob-east-1.
var regionPattern = regexp.MustCompile(`^[a-z]{2}(-gov|-iso[a-z]?)?-[a-z]+-[0-9]+$`)

var knownRegions = map[string]Region{
	"af-south-1":     {"af-south-1", "aws", "Africa (Cape Town)"},
	"ap-east-1":      {"ap-east-1", "aws", "Asia Pacific (Hong Kong)"},
	"ap-east-2":      {"ap-east-2", "aws", "Asia Pacific (Taipei)"},
	"ap-northeast-1": {"ap-northeast-1", "aws", "Asia Pacific (Tokyo)"},
	"ap-northeast-2": {"ap-northeast-2", "aws", "Asia Pacific (Seoul)"},
	"ap-northeast-3": {"ap-northeast-3", "aws", "Asia Pacific (Osaka)"},
	"ap-south-1":     {"ap-south-1", "aws", "Asia Pacific (Mumbai)"},
	"ap-south-2":     {"ap-south-2", "aws", "Asia Pacific (Hyderabad)"},
	"ap-southeast-1": {"ap-southeast-1", "aws", "Asia Pacific (Singapore)"},
	"ap-southeast-2": {"ap-southeast-2", "aws", "Asia Pacific (Sydney)"},
	"ap-southeast-3": {"ap-southeast-3", "aws", "Asia Pacific (Jakarta)"},
	"ap-southeast-4": {"ap-southeast-4", "aws", "Asia Pacific (Melbourne)"},
	"ap-southeast-5": {"ap-southeast-5", "aws", "Asia Pacific (Malaysia)"},
	"ap-southeast-7": {"ap-southeast-7", "aws", "Asia Pacific (Thailand)"},
	"ca-central-1":   {"ca-central-1", "aws", "Canada (Central)"},
	"ca-west-1":      {"ca-west-1", "aws", "Canada West (Calgary)"},
	"eu-central-1":   {"eu-central-1", "aws", "Europe (Frankfurt)"},
	"eu-central-2":   {"eu-central-2", "aws", "Europe (Zurich)"},
	"eu-north-1":     {"eu-north-1", "aws", "Europe (Stockholm)"},
	"eu-south-1":     {"eu-south-1", "aws", "Europe (Milan)"},
	"eu-south-2":     {"eu-south-2", "aws", "Europe (Spain)"},
	"eu-west-1":      {"eu-west-1", "aws", "Europe (Ireland)"},
	"eu-west-2":      {"eu-west-2", "aws", "Europe (London)"},
	"eu-west-3":      {"eu-west-3", "aws", "Europe (Paris)"},
	"il-central-1":   {"il-central-1", "aws", "Israel (Tel Aviv)"},
	"me-central-1":   {"me-central-1", "aws", "Middle East (UAE)"},
	"me-south-1":     {"me-south-1", "aws", "Middle East (Bahrain)"},
	"mx-central-1":   {"mx-central-1", "aws", "Mexico (Central)"},
	"sa-east-1":      {"sa-east-1", "aws", "South America (Sao Paulo)"},
	"us-east-1":      {"us-east-1", "aws", "US East (N. Virginia)"},
	"us-east-2":      {"us-east-2", "aws", "US East (Ohio)"},
	"us-west-1":      {"us-west-1", "aws", "US West (N. California)"},
	"us-west-2":      {"us-west-2", "aws", "US West (Oregon)"},
	"cn-north-1":     {"cn-north-1", "aws-cn", "China (Beijing)"},
	"cn-northwest-1": {"cn-northwest-1", "aws-cn", "China (Ningxia)"},
	"us-gov-east-1":  {"us-gov-east-1", "aws-us-gov", "AWS GovCloud (US-East)"},
	"us-gov-west-1":  {"us-gov-west-1", "aws-us-gov", "AWS GovCloud (US-West)"},
}

// LookupRegion resolves a region by system name. Names not in the built-in
// table resolve when they are well formed, so regions launched after this
// build still work. Anything else reports false.
func LookupRegion(name string) (Region, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if r, ok := knownRegions[name]; ok {
		return r, true
	}
	if !regionPattern.MatchString(name) {
		return Region{}, false
	}
	return Region{Name: name, Partition: partitionOf(name)}, true
}

func partitionOf(name string) string {
	switch {
	case strings.HasPrefix(name, "cn-"):
		return "aws-cn"
	case strings.HasPrefix(name, "us-gov-"):
		return "aws-us-gov"
	case strings.HasPrefix(name, "us-isob-"):
		return "aws-iso-b"
	case strings.HasPrefix(name, "us-isof-"):
		return "aws-iso-f"
	case strings.HasPrefix(name, "eu-isoe-"):
		return "aws-iso-e"
	case strings.HasPrefix(name, "us-iso-"):
		return "aws-iso"
	default:
		return "aws"
	}
}
