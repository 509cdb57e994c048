package ndk

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

var errNotDir = errors.New("not a directory")

// Ranking picks the best candidate from a scan.
type Ranking interface {
	// Best returns the winning candidate, or false if candidates is empty.
	Best(candidates []Candidate) (Candidate, bool)
}

// CompositeRanking orders candidates by major*1000 + minor, ignoring every
// later segment. Equal keys are won by the candidate that comes last.
//
// This is the ordering the Flutter Gradle scaffold uses, so "25.1.8937393" and
// "25.1.9999999" compare equal and the one listed last is picked.
type CompositeRanking struct{}

// Best implements Ranking.
func (CompositeRanking) Best(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Key() >= best.Key() {
			best = c
		}
	}
	return best, true
}

// SemverRanking orders candidates by their full semantic version, so patch
// segments and minors of 1000 or more are compared correctly. Names that are
// not valid semver are ranked as major.minor.0. Ties go to the last candidate.
type SemverRanking struct{}

// Best implements Ranking.
func (SemverRanking) Best(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	bestV := candidateSemver(best)
	for _, c := range candidates[1:] {
		v := candidateSemver(c)
		if v.Compare(bestV) >= 0 {
			best, bestV = c, v
		}
	}
	return best, true
}

func candidateSemver(c Candidate) *semver.Version {
	if v, err := semver.NewVersion(c.Raw); err == nil {
		return v
	}
	return semver.New(uint64(c.Major), uint64(c.Minor), 0, "", "")
}

// ParseRanking maps a configuration name to a Ranking.
// The empty string selects CompositeRanking.
func ParseRanking(name string) (Ranking, error) {
	switch name {
	case "", "composite":
		return CompositeRanking{}, nil
	case "semver":
		return SemverRanking{}, nil
	default:
		return nil, fmt.Errorf("unknown ndk ranking %q: want \"composite\" or \"semver\"", name)
	}
}
