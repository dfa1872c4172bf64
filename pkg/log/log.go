// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package log configures the shared logrus instance used by every mempool
// component. Call Configure once during process startup (outside the scope
// of this module); components that import this package before Configure
// runs still get a usable, if unrotated, stderr logger.
package log

import (
	"io"

	"github.com/mattn/go-colorable"
	logger "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how verbosely the mempool logs.
type Options struct {
	// Level is parsed with logrus.ParseLevel; an empty string keeps the
	// current level.
	Level string

	// FilePath, if non-empty, also sends log output to a rotating file.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func init() {
	logger.SetFormatter(&prefixed.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	logger.SetOutput(colorable.NewColorableStderr())
}

// Configure applies Options to the shared logrus instance.
func Configure(opts Options) error {
	if opts.Level != "" {
		lvl, err := logger.ParseLevel(opts.Level)
		if err != nil {
			return err
		}
		logger.SetLevel(lvl)
	}

	if opts.FilePath == "" {
		return nil
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.FilePath,
		MaxSize:    nonZero(opts.MaxSizeMB, 100),
		MaxBackups: nonZero(opts.MaxBackups, 5),
		MaxAge:     nonZero(opts.MaxAgeDays, 28),
		Compress:   true,
	}

	logger.SetOutput(io.MultiWriter(colorable.NewColorableStderr(), rotator))
	return nil
}

func nonZero(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

// WithPrefix returns an entry tagged with the given component prefix, the
// same convention the rest of this codebase uses for per-package loggers.
func WithPrefix(prefix string) *logger.Entry {
	return logger.WithFields(logger.Fields{"prefix": prefix})
}
