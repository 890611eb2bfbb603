// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	assert.True(t, strings.HasPrefix(Info(), "pii-consolidator "+Version))
	assert.Equal(t, Version, Short())
}

func TestGet(t *testing.T) {
	b := Get()
	assert.Equal(t, Version, b.Version)
	assert.Equal(t, runtime.Version(), b.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, b.Platform)
	assert.NotEmpty(t, b.Commit)
	assert.NotEmpty(t, b.BuildDate)
}

func TestGet_LinkTimeValuesWin(t *testing.T) {
	oldCommit, oldDate := GitCommit, BuildDate
	t.Cleanup(func() { GitCommit, BuildDate = oldCommit, oldDate })

	GitCommit, BuildDate = "abc1234", "2024-05-01"
	b := Get()
	assert.Equal(t, "abc1234", b.Commit)
	assert.Equal(t, "2024-05-01", b.BuildDate)
}
