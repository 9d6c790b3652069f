// Copyright © 2019 Annchain Authors <EMAIL ADDRESS>
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
package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixPrefixPath(t *testing.T) {
	require.Equal(t, "data", FixPrefixPath("", "data"))
	require.Equal(t, "root/data", FixPrefixPath("root", "data"))
	require.Equal(t, "/abs/data", FixPrefixPath("root", "/abs/data"))
}

func TestMkDirIfNotExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.False(t, FolderExists(dir))
	require.NoError(t, MkDirIfNotExists(dir))
	require.NoError(t, MkDirIfNotExists(dir))
	require.True(t, FolderExists(dir))
	require.False(t, FileExists(dir))

	f := filepath.Join(dir, "x.toml")
	require.NoError(t, os.WriteFile(f, []byte("a=1"), 0644))
	require.True(t, FileExists(f))
}
