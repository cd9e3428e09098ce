// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/proofdesk/pkg/logging"
)

const sampleDiff = `diff --git a/pkg/calc/calc.go b/pkg/calc/calc.go
--- a/pkg/calc/calc.go
+++ b/pkg/calc/calc.go
@@ -10,4 +10,4 @@ func Add(a, b int) int {
 }
 func Div(a, b int) int {
-	return a / b
+	return safeDiv(a, b)
 }
diff --git a/pkg/calc/calc_test.go b/pkg/calc/calc_test.go
--- a/pkg/calc/calc_test.go
+++ b/pkg/calc/calc_test.go
@@ -1,1 +1,7 @@
 package calc
+
+func TestDivByZero(t *testing.T) {
+	if Div(1, 0) != 0 {
+		t.Fatal("expected safe division")
+	}
+}
`

func TestExtractDiff(t *testing.T) {
	m := ExtractDiff(sampleDiff, logging.Discard())

	assert.Equal(t, []string{"pkg/calc/calc.go", "pkg/calc/calc_test.go"}, m.FilesChanged)
	assert.Equal(t, []string{"pkg/calc/calc_test.go"}, m.TestFilesChanged)
	assert.Equal(t, 7, m.LinesAdded)
	assert.Equal(t, 1, m.LinesRemoved)
	assert.Equal(t, 1, m.TestFuncsAdded)
	assert.Equal(t, 0, m.SkipDirectivesAdded)
	assert.True(t, m.TestAdded)
}

func TestExtractDiffNoTests(t *testing.T) {
	content := `diff --git a/main.go b/main.go
--- a/main.go
+++ b/main.go
@@ -1,1 +1,1 @@
-old line
+new line
`
	m := ExtractDiff(content, logging.Discard())

	assert.Equal(t, []string{"main.go"}, m.FilesChanged)
	assert.Empty(t, m.TestFilesChanged)
	assert.Zero(t, m.TestFuncsAdded)
	assert.False(t, m.TestAdded)
}

func TestExtractDiffSkipDirectives(t *testing.T) {
	content := `diff --git a/tests/test_api.py b/tests/test_api.py
--- a/tests/test_api.py
+++ b/tests/test_api.py
@@ -1,2 +1,5 @@
+@pytest.mark.skip(reason="flaky")
 def test_existing():
     pass
+def test_new():
+    assert True
`
	m := ExtractDiff(content, logging.Discard())

	assert.Equal(t, 1, m.SkipDirectivesAdded)
	assert.Equal(t, 1, m.TestFuncsAdded)
	assert.True(t, m.TestAdded)
}

func TestExtractDiffMalformedFallsBack(t *testing.T) {
	// Not a valid unified diff, but the raw scan still recovers the
	// added/removed counts and the file header.
	content := `random preamble
+++ b/widget_test.go
+func TestWidget(t *testing.T) {}
+added line
-removed line
`
	m := ExtractDiff(content, logging.Discard())

	assert.Equal(t, []string{"widget_test.go"}, m.FilesChanged)
	require.Len(t, m.TestFilesChanged, 1)
	assert.Equal(t, 2, m.LinesAdded)
	assert.Equal(t, 1, m.LinesRemoved)
	assert.True(t, m.TestAdded)
}

func TestExtractDiffEmpty(t *testing.T) {
	m := ExtractDiff("", logging.Discard())
	assert.Empty(t, m.FilesChanged)
	assert.Zero(t, m.LinesAdded)
	assert.False(t, m.TestAdded)
}

func TestIsTestFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"pkg/foo/foo_test.go", true},
		{"tests/test_api.py", true},
		{"src/app.test.ts", true},
		{"src/__tests__/app.js", true},
		{"test/helper.rb", true},
		{"pkg/foo/foo.go", false},
		{"contest/results.go", false},
		{"src/app.ts", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isTestFile(tt.path), tt.path)
	}
}
