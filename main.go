/*
gles-probe selects a renderer the same way an EGL display would and prints
what it found. With -watch it re-selects whenever the config file changes.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer"
	"github.com/spaghettifunk/gles/engine/renderer/d3d"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	backend := flag.String("backend", "", "force a backend (d3d9, d3d11 or default)")
	watch := flag.Bool("watch", false, "re-select the renderer when the config file changes")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *backend)
	if err != nil {
		core.LogFatal("%s", err)
	}
	if err := probe(cfg); err != nil {
		core.LogFatal("%s", err)
	}
	if !*watch {
		return
	}
	if *configPath == "" {
		core.LogFatal("-watch needs -config")
	}

	watcher, err := core.WatchConfig(*configPath, func(cfg *core.Config) {
		if *backend != "" {
			cfg.Renderer.Backend = *backend
		}
		if err := probe(cfg); err != nil {
			core.LogError("%s", err)
		}
	})
	if err != nil {
		core.LogFatal("%s", err)
	}
	defer watcher.Close()

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	<-sigCh
}

func loadConfig(path, backend string) (*core.Config, error) {
	cfg := core.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = core.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if backend != "" {
		cfg.Renderer.Backend = backend
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func probe(cfg *core.Config) error {
	if err := core.SetLogLevel(cfg.Log.Level); err != nil {
		return err
	}
	r, err := renderer.New(cfg, nil)
	if err != nil {
		return err
	}
	defer r.Shutdown()

	// touch every state cache once so the metrics have something to show
	if _, err := r.BlendState([]gl.GLenum{gl.RGBA8}, metadata.DefaultBlendState()); err != nil {
		return err
	}
	if _, err := r.RasterizerState(metadata.DefaultRasterizerState(), false); err != nil {
		return err
	}
	if _, err := r.DepthStencilState(metadata.DefaultDepthStencilState()); err != nil {
		return err
	}
	if _, err := r.SamplerState(metadata.DefaultSamplerState()); err != nil {
		return err
	}

	caps := r.Caps()
	fmt.Printf("renderer      %s (%s)\n", r.Backend().Name(), r.ID())
	fmt.Printf("shader model  %d\n", r.Backend().MajorShaderModel())
	fmt.Printf("texture size  %d\n", caps.MaxTextureSize)
	fmt.Printf("draw buffers  %d\n", caps.MaxDrawBuffers)
	fmt.Printf("samples       %d\n", caps.MaxSamples)
	fmt.Printf("uint indices  %t\n", caps.ElementIndexUint)

	metrics := r.StateCacheMetrics()
	for _, kind := range d3d.StateKinds() {
		fmt.Printf("%-13s %s\n", kind, metrics[kind])
	}
	return nil
}
