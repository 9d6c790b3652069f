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
package node

import (
	"runtime"
	"time"

	"github.com/annchain/vrfdkg/common/goroutine"
	"github.com/sirupsen/logrus"
)

// PerformanceMonitor periodically logs the figures of its reporters.
type PerformanceMonitor struct {
	interval  time.Duration
	reporters []PerformanceReporter
	quit      chan struct{}
}

func NewPerformanceMonitor(interval time.Duration) *PerformanceMonitor {
	return &PerformanceMonitor{
		interval: interval,
		quit:     make(chan struct{}),
	}
}

func (p *PerformanceMonitor) Register(holder PerformanceReporter) {
	p.reporters = append(p.reporters, holder)
}

func (p *PerformanceMonitor) Report() logrus.Fields {
	fields := logrus.Fields{}
	for _, r := range p.reporters {
		fields[r.Name()] = r.GetBenchmarks()
	}
	fields["goroutines"] = runtime.NumGoroutine()
	return fields
}

func (p *PerformanceMonitor) Start() {
	goroutine.New(func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logrus.WithFields(p.Report()).Info("Performance")
			case <-p.quit:
				return
			}
		}
	})
}

func (p *PerformanceMonitor) Stop() {
	close(p.quit)
}

func (PerformanceMonitor) Name() string {
	return "PerformanceMonitor"
}
