// Copyright 2024 The OSS Rebuild Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package semver implements the Semantic Versioning 2.0.0 spec along with
// coercion of the looser version strings found on package registries.
package semver

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type Semver struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
	Build      string
}

// Adapted from: https://semver.org/spec/v2.0.0#is-there-a-suggested-regular-expression-regex-to-check-a-semver-string
var semverRE = regexp.MustCompile(`^v?(?P<Major>0|[1-9]\d*)\.(?P<Minor>0|[1-9]\d*)\.(?P<Patch>0|[1-9]\d*)(?:-(?P<Prerelease>(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?(?:\+(?P<Build>[0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)

func New(s string) (Semver, error) {
	if !semverRE.MatchString(s) {
		return Semver{}, errors.Errorf("Invalid semver")
	}
	matches := semverRE.FindStringSubmatch(s)
	major, err := strconv.Atoi(matches[semverRE.SubexpIndex("Major")])
	if err != nil {
		return Semver{}, errors.Wrap(err, "parsing major")
	}
	minor, err := strconv.Atoi(matches[semverRE.SubexpIndex("Minor")])
	if err != nil {
		return Semver{}, errors.Wrap(err, "parsing minor")
	}
	patch, err := strconv.Atoi(matches[semverRE.SubexpIndex("Patch")])
	if err != nil {
		return Semver{}, errors.Wrap(err, "parsing patch")
	}
	return Semver{
		major,
		minor,
		patch,
		matches[semverRE.SubexpIndex("Prerelease")],
		matches[semverRE.SubexpIndex("Build")],
	}, nil
}

// String renders the version in canonical form.
func (s Semver) String() string {
	v := fmt.Sprintf("%d.%d.%d", s.Major, s.Minor, s.Patch)
	if s.Prerelease != "" {
		v += "-" + s.Prerelease
	}
	if s.Build != "" {
		v += "+" + s.Build
	}
	return v
}

// Core returns the version stripped of prerelease and build metadata.
func (s Semver) Core() Semver {
	return Semver{Major: s.Major, Minor: s.Minor, Patch: s.Patch}
}

// Compare returns -1, 0 or 1 depending on whether s sorts before, equal to or after o.
func (s Semver) Compare(o Semver) int {
	switch {
	case s.Major != o.Major:
		return cmp.Compare(s.Major, o.Major)
	case s.Minor != o.Minor:
		return cmp.Compare(s.Minor, o.Minor)
	case s.Patch != o.Patch:
		return cmp.Compare(s.Patch, o.Patch)
	case s.Prerelease != o.Prerelease:
		return prereleaseCmp(s.Prerelease, o.Prerelease)
	default:
		// Build metadata does not participate in ordering.
		return 0
	}
}

// Less reports whether s sorts strictly before o.
func (s Semver) Less(o Semver) bool {
	return s.Compare(o) < 0
}

// Max returns the greatest of the provided versions and false if none were provided.
// Between equal versions the first one wins.
func Max(vs ...Semver) (Semver, bool) {
	if len(vs) == 0 {
		return Semver{}, false
	}
	best := vs[0]
	for _, v := range vs[1:] {
		if best.Less(v) {
			best = v
		}
	}
	return best, true
}

var numericRE = regexp.MustCompile(`\d+`)

func prereleaseKey(p string) (alpha string, numeric int) {
	alpha = p
	if match := numericRE.FindAllStringIndex(p, -1); match != nil {
		last := match[len(match)-1]
		numeric, _ = strconv.Atoi(p[last[0]:last[1]])
		alpha = p[:last[0]]
	}
	return
}

func prereleaseKeys(p string) (alphas []string, numerics []int) {
	for _, part := range strings.Split(p, ".") {
		a, n := prereleaseKey(part)
		alphas = append(alphas, a)
		numerics = append(numerics, n)
	}
	return
}

func prereleaseCmp(a, b string) int {
	if a == "" {
		return 1
	} else if b == "" {
		return -1
	}
	aas, ans := prereleaseKeys(a)
	bas, bns := prereleaseKeys(b)
	for i := 0; i < min(len(aas), len(bas)); i++ {
		if aas[i] != bas[i] {
			return strings.Compare(aas[i], bas[i])
		}
		if ans[i] != bns[i] {
			return cmp.Compare(ans[i], bns[i])
		}
	}
	return cmp.Compare(len(aas), len(bas))
}
