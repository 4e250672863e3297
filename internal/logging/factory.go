// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSize  = 8 // megabytes
	defaultMaxFiles = 4
	defaultMaxAge   = 7 // days
)

// NewConfig returns a config that writes JSON files under dir at level and,
// if display is set, colored console output to stderr.
func NewConfig(dir string, level string, display bool) (logging.Config, error) {
	lvl, err := logging.ToLevel(level)
	if err != nil {
		return logging.Config{}, err
	}
	return logging.Config{
		RotatingWriterConfig: logging.RotatingWriterConfig{
			MaxSize:   defaultMaxSize,
			MaxFiles:  defaultMaxFiles,
			MaxAge:    defaultMaxAge,
			Directory: dir,
		},
		DisplayLevel:            lvl,
		LogLevel:                lvl,
		LogFormat:               logging.JSON,
		DisableWriterDisplaying: !display,
	}, nil
}

type logWrapper struct {
	logger       logging.Logger
	displayLevel zap.AtomicLevel
	logLevel     zap.AtomicLevel
}

// Factory builds loggers that write to the console and to a rotating file
// named after the logger. Unlike the avalanchego factory, console output can
// be muted entirely.
type Factory struct {
	config logging.Config
	lock   sync.RWMutex

	// Logger name --> the logger.
	loggers map[string]logWrapper
}

func NewFactory(config logging.Config) *Factory {
	return &Factory{
		config:  config,
		loggers: make(map[string]logWrapper),
	}
}

// Assumes [f.lock] is held
func (f *Factory) makeLogger(config logging.Config) (logging.Logger, error) {
	if _, ok := f.loggers[config.LoggerName]; ok {
		return nil, fmt.Errorf("logger with name %q already exists", config.LoggerName)
	}
	consoleEnc := logging.Colors.ConsoleEncoder()
	fileEnc := config.LogFormat.FileEncoder()

	var consoleWriter io.WriteCloser
	if config.DisableWriterDisplaying {
		consoleWriter = discardWriteCloser{io.Discard}
	} else {
		consoleWriter = os.Stderr
	}

	consoleCore := logging.NewWrappedCore(config.DisplayLevel, consoleWriter, consoleEnc)
	consoleCore.WriterDisabled = config.DisableWriterDisplaying

	rw := &lumberjack.Logger{
		Filename:   filepath.Join(config.Directory, config.LoggerName+".log"),
		MaxSize:    config.MaxSize,
		MaxAge:     config.MaxAge,
		MaxBackups: config.MaxFiles,
		Compress:   config.Compress,
	}
	fileCore := logging.NewWrappedCore(config.LogLevel, rw, fileEnc)
	prefix := config.LogFormat.WrapPrefix(config.MsgPrefix)

	l := logging.NewLogger(prefix, consoleCore, fileCore)
	f.loggers[config.LoggerName] = logWrapper{
		logger:       l,
		displayLevel: consoleCore.AtomicLevel,
		logLevel:     fileCore.AtomicLevel,
	}
	return l, nil
}

func (f *Factory) Make(name string) (logging.Logger, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	config := f.config
	config.LoggerName = name
	return f.makeLogger(config)
}

// SetLevels changes the file and console levels of a named logger.
func (f *Factory) SetLevels(name string, logLevel logging.Level, displayLevel logging.Level) error {
	f.lock.RLock()
	defer f.lock.RUnlock()

	lw, ok := f.loggers[name]
	if !ok {
		return fmt.Errorf("logger with name %q not found", name)
	}
	lw.logLevel.SetLevel(zapcore.Level(logLevel))
	lw.displayLevel.SetLevel(zapcore.Level(displayLevel))
	return nil
}

func (f *Factory) Close() {
	f.lock.Lock()
	defer f.lock.Unlock()

	for _, lw := range f.loggers {
		lw.logger.Stop()
	}
	f.loggers = nil
}

type discardWriteCloser struct {
	io.Writer
}

func (discardWriteCloser) Close() error {
	return nil
}
