// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package doc

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestVersion(t *testing.T) {
	// ensure the version loaded from the yaml file meets the semver format, eg. 1.2.3
	validVersion := regexp.MustCompile(`^\d+(\.\d+){2}$`)

	assert.True(t, validVersion.Match([]byte(Version())))
}

func TestPaths(t *testing.T) {
	content, err := FS.ReadFile("lst.yaml")
	require.NoError(t, err)

	var spec struct {
		Paths map[string]any `yaml:"paths"`
	}
	require.NoError(t, yaml.Unmarshal(content, &spec))
	for _, path := range []string{
		"/pools",
		"/pools/{id}",
		"/pools/{id}/members/{account}",
		"/eras/current",
		"/events",
		"/tx/{op}",
		"/misbehavior/verify",
	} {
		assert.Contains(t, spec.Paths, path)
	}
}
