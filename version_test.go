// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package dtrace

import (
	"os"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestVersionSemver(t *testing.T) {
	v := Version()
	_, err := semver.StrictNewVersion(v[1:])
	assert.NoError(t, err, "version is not semver: %s", v)
	assert.Equal(t, byte('v'), v[0], "version must start with v: %s", v)
}

func TestVersionMatchesYaml(t *testing.T) {
	versionYaml, err := os.ReadFile("versions.yaml")
	require.NoError(t, err, "Couldn't read versions.yaml file")

	var versionInfo struct {
		ModuleSets map[string]struct {
			Version string `yaml:"version"`
		} `yaml:"module-sets"`
	}

	err = yaml.Unmarshal(versionYaml, &versionInfo)
	require.NoError(t, err, "Couldn't parse version.yaml")

	require.Contains(t, versionInfo.ModuleSets, "dtrace")
	assert.Equal(t, versionInfo.ModuleSets["dtrace"].Version, Version(), "Build version should match versions.yaml.")
}
