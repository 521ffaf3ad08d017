package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"  WARN ": zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	SetLevel("debug")
	if !atomicLVL.Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug should be enabled after SetLevel(debug)")
	}
	SetLevel("error")
	if atomicLVL.Enabled(zapcore.WarnLevel) {
		t.Fatalf("warn should be disabled after SetLevel(error)")
	}
}
