package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		want      zapcore.Level
	}{
		{name: "default is warn", verbosity: 0, want: zapcore.WarnLevel},
		{name: "-v is info", verbosity: 1, want: zapcore.InfoLevel},
		{name: "-vv is debug", verbosity: 2, want: zapcore.DebugLevel},
		{name: "-vvv stays debug", verbosity: 3, want: zapcore.DebugLevel},
		{name: "excess flags stay debug", verbosity: 7, want: zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerbosityToLevel(tt.verbosity); got != tt.want {
				t.Errorf("VerbosityToLevel(%d) = %v, want %v", tt.verbosity, got, tt.want)
			}
		})
	}
}

func TestShouldLogTrace(t *testing.T) {
	if ShouldLogTrace(VerbosityDebug) {
		t.Error("ShouldLogTrace(VerbosityDebug) = true, want false")
	}
	if !ShouldLogTrace(VerbosityTrace) {
		t.Error("ShouldLogTrace(VerbosityTrace) = false, want true")
	}
}

func TestInitializeSetsGlobal(t *testing.T) {
	if err := Initialize(true, VerbosityInfo); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after Initialize")
	}
	if !JSONOutput {
		t.Error("JSONOutput = false after Initialize(true, ...)")
	}
}
