package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type impl struct {
	name  string
	level zap.AtomicLevel
	*zap.SugaredLogger
}

func newImpl(name string, level zap.AtomicLevel, core zapcore.Core) *impl {
	logger := zap.New(core, zap.AddCaller()).Sugar()
	if name != "" {
		logger = logger.Named(name)
	}
	return &impl{name: name, level: level, SugaredLogger: logger}
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}

	return &impl{
		name:          newName,
		level:         imp.level,
		SugaredLogger: imp.SugaredLogger.Named(subname),
	}
}

func (imp *impl) SetLevel(level zapcore.Level) {
	imp.level.SetLevel(level)
}

func (imp *impl) Level() zapcore.Level {
	return imp.level.Level()
}

func (imp *impl) AsZap() *zap.SugaredLogger {
	return imp.SugaredLogger
}
