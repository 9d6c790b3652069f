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
package mylog

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/annchain/vrfdkg/common/utilfuncs"
	rotatelogs "github.com/lestrrat/go-file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

// Options controls where and how the process logs.
type Options struct {
	Level      string
	Stdout     bool
	File       bool
	Dir        string
	ByLevel    bool
	LineNumber bool
}

func RotateLog(abspath string) *rotatelogs.RotateLogs {
	logFile, err := rotatelogs.New(
		abspath+"%Y%m%d%H%M.log",
		rotatelogs.WithLinkName(abspath+".log"),
		rotatelogs.WithMaxAge(24*time.Hour*7),
		rotatelogs.WithRotationTime(time.Hour*24),
	)
	utilfuncs.PanicIfError(err, "err init log")
	return logFile
}

func ParseLevel(level string) logrus.Level {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		fmt.Println("Unknown level: ", level, "Set to INFO")
		return logrus.InfoLevel
	}
	return l
}

func newFormatter(colors bool) *logrus.TextFormatter {
	formatter := new(logrus.TextFormatter)
	formatter.ForceColors = colors
	formatter.TimestampFormat = "2006-01-02 15:04:05.000000"
	formatter.FullTimestamp = true
	return formatter
}

// LogInit sets up the standard logger for console use.
func LogInit(level logrus.Level) {
	logrus.SetFormatter(newFormatter(true))
	logrus.SetLevel(level)
}

// Init configures the standard logger. File logs rotate daily under
// opts.Dir; with ByLevel each level also gets its own rotating file.
func Init(opts Options) {
	var writers []io.Writer
	if opts.File {
		folderPath, err := filepath.Abs(opts.Dir)
		utilfuncs.PanicIfError(err, fmt.Sprintf("Error on parsing log path: %s", opts.Dir))
		err = os.MkdirAll(folderPath, os.ModePerm)
		utilfuncs.PanicIfError(err, fmt.Sprintf("Error on creating log dir: %s", folderPath))
		abspath := path.Join(folderPath, "run")
		writers = append(writers, RotateLog(abspath))
		fmt.Println("Will be logged to " + abspath + ".log")
	}
	if opts.Stdout {
		writers = append(writers, os.Stdout)
	}
	switch len(writers) {
	case 0:
		logrus.SetOutput(io.Discard)
	case 1:
		logrus.SetOutput(writers[0])
	default:
		logrus.SetOutput(io.MultiWriter(writers...))
	}

	formatter := newFormatter(opts.Stdout)
	logrus.SetFormatter(formatter)
	logrus.SetLevel(ParseLevel(opts.Level))
	logrus.SetReportCaller(opts.LineNumber)

	if opts.ByLevel && opts.File {
		writerMap := lfshook.WriterMap{}
		for _, level := range logrus.AllLevels {
			p, _ := filepath.Abs(path.Join(opts.Dir, level.String()))
			writerMap[level] = RotateLog(p)
		}
		logrus.AddHook(lfshook.NewHook(writerMap, formatter))
	}
	logrus.Debug("Logger initialized.")
}
