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
package goroutine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	done := make(chan struct{})
	release := make(chan struct{})
	New(func() {
		<-release
		close(done)
	})
	require.Eventually(t, func() bool { return Running() >= 1 }, time.Second, 10*time.Millisecond)
	close(release)
	<-done
	require.Eventually(t, func() bool { return Running() == 0 }, time.Second, 10*time.Millisecond)
}
