// Command vkreplay replays a YAML scenario through the Vulkan backend without
// a GPU, logging every native call the backend makes. With -probe it instead
// loads the real driver and pushes one empty submission through a device.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/andewx/nxtvk"
	"github.com/andewx/nxtvk/internal/scenario"
	vk "github.com/vulkan-go/vulkan"
)

func main() {
	var (
		configPath   = flag.String("config", "", "YAML config file")
		scenarioPath = flag.String("scenario", "", "YAML scenario to replay")
		probe        = flag.Bool("probe", false, "load Vulkan through GLFW, list extensions and submit once to the GPU")
		verbose      = flag.Bool("v", false, "log barriers and descriptor pool lifetime")
	)
	flag.Parse()

	cfg := nxtvk.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = nxtvk.LoadConfig(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	level, err := cfg.Level()
	if err != nil {
		log.Fatal(err)
	}
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	nxtvk.SetLogger(logger)

	if *probe {
		if err := probeVulkan(cfg, logger); err != nil {
			log.Fatalf("probe: %v", err)
		}
		return
	}

	if *scenarioPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := replay(cfg, logger, *scenarioPath); err != nil {
		log.Fatal(err)
	}
}

func probeVulkan(cfg nxtvk.Config, logger *slog.Logger) error {
	if err := nxtvk.LoadVulkan(); err != nil {
		return err
	}
	defer nxtvk.UnloadVulkan()

	names, err := nxtvk.InstanceExtensions()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	layers, err := nxtvk.ValidationLayers()
	if err != nil {
		return err
	}
	for _, name := range layers {
		fmt.Println("layer:", name)
	}

	inst, err := nxtvk.NewInstance("vkreplay", cfg.Layers)
	if err != nil {
		return err
	}
	defer inst.Destroy()

	desc := inst.DeviceDescriptor(cfg)
	desc.Logger = logger
	device, err := nxtvk.NewDevice(desc)
	if err != nil {
		return err
	}
	defer device.Destroy()

	empty := nxtvk.NewCommandBuffer(device, nxtvk.NewCommandRecorder().Acquire(), "probe")
	if err := device.Submit(empty); err != nil {
		return err
	}
	deadline := time.Now().Add(probeTimeout)
	for device.CompletedSerial() < device.LastSubmittedSerial() {
		if time.Now().After(deadline) {
			return fmt.Errorf("submission not complete after %v", probeTimeout)
		}
		time.Sleep(time.Millisecond)
		if err := device.Tick(); err != nil {
			return err
		}
	}
	fmt.Println("gpu:", inst.GPUName())
	return nil
}

const probeTimeout = 5 * time.Second

func replay(cfg nxtvk.Config, logger *slog.Logger, path string) error {
	s, err := scenario.Load(path)
	if err != nil {
		return err
	}

	// The tracer stands in for the driver, so it must not be wrapped again.
	cfg.Trace = false
	device, err := nxtvk.NewDevice(nxtvk.DeviceDescriptor{
		Handle:    vk.Device(nxtvk.NewSyntheticHandle()),
		Queue:     vk.Queue(nxtvk.NewSyntheticHandle()),
		Functions: nxtvk.NewTraceFunctions(nil, logger),
		Config:    cfg,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer device.Destroy()

	built, err := scenario.Build(device, s)
	if err != nil {
		return err
	}

	for _, sub := range built.Submissions {
		if err := device.Submit(sub.Commands); err != nil {
			return err
		}
		for _, group := range sub.Release {
			group.Release()
		}
		if err := device.Tick(); err != nil {
			return err
		}
	}

	built.ReleaseAll()
	if err := device.Tick(); err != nil {
		return err
	}
	logger.Info("replay finished",
		"scenario", s.Name,
		"submissions", len(built.Submissions),
		"completedSerial", device.CompletedSerial(),
		"pendingPools", device.FencedDeleter().Len())
	return nil
}
