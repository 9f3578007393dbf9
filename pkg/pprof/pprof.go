package pprof

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/rs/zerolog/log"
)

var cpuProfileFile *os.File

// defaultPath resolves the profile directory when --pprof-path is empty.
func defaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".logdeck", "pprof"), nil
}

// Setup starts CPU profiling into pprofPath/cpu.pprof
func Setup(pprofPath string) error {
	if pprofPath == "" {
		var err error
		if pprofPath, err = defaultPath(); err != nil {
			return err
		}
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(pprofPath, 0755); err != nil {
		return fmt.Errorf("failed to create pprof directory: %w", err)
	}

	cpuFile := filepath.Join(pprofPath, "cpu.pprof")
	f, err := os.Create(cpuFile)
	if err != nil {
		return fmt.Errorf("could not create CPU profile file: %w", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("could not start CPU profile: %w", err)
	}
	cpuProfileFile = f

	log.Info().Str("path", cpuFile).Msg("CPU profiling started")
	return nil
}

// Stop stops CPU profiling and writes a final heap profile
func Stop(pprofPath string) {
	if pprofPath == "" {
		var err error
		if pprofPath, err = defaultPath(); err != nil {
			log.Error().Err(err).Msg("Failed to resolve pprof directory for stopping profiling")
			return
		}
	}

	pprof.StopCPUProfile()
	if cpuProfileFile != nil {
		if err := cpuProfileFile.Close(); err != nil {
			log.Error().Err(err).Msg("Could not close CPU profile file")
		}
		cpuProfileFile = nil
	}

	memFile := filepath.Join(pprofPath, "memory.pprof")
	f, err := os.Create(memFile)
	if err != nil {
		log.Error().Err(err).Str("path", memFile).Msg("Could not create memory profile file")
		return
	}
	defer f.Close()

	runtime.GC() // Get up-to-date statistics
	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Error().Err(err).Str("path", memFile).Msg("Could not write memory profile")
		return
	}

	log.Info().Str("path", memFile).Msg("Memory profile written")
}
