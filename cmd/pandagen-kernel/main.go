// pandagen-kernel runs the simulated capability microkernel as a
// standalone process: it replays a scenario file of syscalls against a
// fresh Kernel, logs each step's outcome, and logs how many syscall
// audit events were recorded.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	systemd "github.com/coreos/go-systemd/v22/daemon"
	goccyjson "github.com/goccy/go-json"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernel"
	"github.com/armper/PandaGen-sub001/storage"
)

const usage string = `pandagen-kernel

pandagen-kernel replays a scenario of syscalls against a freshly
constructed simulated kernel and reports how many syscall audit events
it recorded. It
exists to exercise the kernel's managers (capabilities, channels,
services, address spaces, budgets) outside of a unit test.
`

// scenarioStep is the on-disk shape of one element of a scenario file,
// which holds a single JSON array of steps.
// Only the fields relevant to the named syscall need to be set.
type scenarioStep struct {
	Syscall    string `json:"syscall"`
	TaskName   string `json:"task_name,omitempty"`
	ServiceId  string `json:"service_id,omitempty"`
	SleepNanos uint64 `json:"sleep_nanos,omitempty"`
}

func runProfiler(ctx *cli.Context) (interface{ Stop() }, error) {
	cpuOn := ctx.Bool("cpu-profiling")
	memOn := ctx.Bool("memory-profiling")
	if cpuOn && memOn {
		return nil, fmt.Errorf("unsupported parameter combination: cpu and memory profiling")
	}
	if !cpuOn && !memOn {
		return nil, nil
	}
	if cpuOn {
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook), nil
	}
	return profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook), nil
}

func loadScenario(path string) ([]scenarioStep, error) {
	if path == "" {
		// A minimal built-in demo: spawn a task, create a channel, register
		// a service against it, then look the service back up.
		return []scenarioStep{
			{Syscall: "SpawnTask", TaskName: "demo-task"},
			{Syscall: "CreateChannel"},
			{Syscall: "RegisterService", ServiceId: "demo-service"},
			{Syscall: "LookupService", ServiceId: "demo-service"},
			{Syscall: "Now"},
		}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}

	var steps []scenarioStep
	if err := goccyjson.Unmarshal(raw, &steps); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}
	return steps, nil
}

// replay runs the scenario against k, keeping the most recently
// created channel and service id around so later steps can reference
// them without the scenario file having to invent its own ids.
func replay(k *kernel.Kernel, steps []scenarioStep) {
	caller := domain.NewExecutionId()
	var lastChannel domain.ChannelId
	var haveChannel bool
	serviceIds := make(map[string]domain.ServiceId)

	for i, step := range steps {
		sc := kernel.Syscall{Name: kernel.SyscallName(step.Syscall)}

		switch kernel.SyscallName(step.Syscall) {
		case kernel.SyscallSpawnTask:
			sc.SpawnDescriptor = kernel.NewTaskDescriptor(step.TaskName)
		case kernel.SyscallSleep:
			sc.SleepNanos = step.SleepNanos
		case kernel.SyscallRegisterService:
			if haveChannel {
				sc.Channel = lastChannel
			}
			sc.ServiceId = serviceIdFor(serviceIds, step.ServiceId)
		case kernel.SyscallLookupService:
			sc.ServiceId = serviceIdFor(serviceIds, step.ServiceId)
		}

		result, err := k.Gate.Execute(k, caller, sc, k.Clock.NowNanos())
		if err != nil {
			logrus.Warnf("step %d (%s) rejected: %v", i, step.Syscall, err)
			continue
		}
		if result.ChannelId != nil {
			lastChannel = *result.ChannelId
			haveChannel = true
		}
		logrus.Infof("step %d (%s) completed", i, step.Syscall)
	}
}

func serviceIdFor(known map[string]domain.ServiceId, name string) domain.ServiceId {
	if id, ok := known[name]; ok {
		return id
	}
	id := domain.NewServiceId()
	known[name] = id
	return id
}

func configureLogging(ctx *cli.Context) error {
	if path := ctx.GlobalString("log"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND|os.O_SYNC, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		logrus.SetOutput(f)
	} else {
		logrus.SetOutput(os.Stderr)
	}

	if ctx.GlobalString("log-format") == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{TimestampFormat: "2006-01-02 15:04:05", FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(ctx.GlobalString("log-level"))
	if err != nil {
		return fmt.Errorf("log-level option %q not recognized", ctx.GlobalString("log-level"))
	}
	logrus.SetLevel(level)
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "pandagen-kernel"
	app.Usage = usage

	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "scenario", Usage: "path to a JSON scenario file; empty runs the built-in demo"},
		cli.StringFlag{Name: "journal-dir", Value: "", Usage: "directory for the write-ahead journal and snapshot store; empty disables durability"},
		cli.StringFlag{Name: "log", Value: "", Usage: "log file path, empty for stderr"},
		cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warning, error, or fatal"},
		cli.StringFlag{Name: "log-format", Value: "text", Usage: "text or json"},
		cli.BoolFlag{Name: "cpu-profiling", Hidden: true},
		cli.BoolFlag{Name: "memory-profiling", Hidden: true},
	}

	app.Before = func(ctx *cli.Context) error {
		return configureLogging(ctx)
	}

	app.Action = func(ctx *cli.Context) error {
		logrus.Info("starting pandagen-kernel ...")

		steps, err := loadScenario(ctx.String("scenario"))
		if err != nil {
			return err
		}

		k := kernel.New()

		var snap *storage.Snapshotter
		if dir := ctx.String("journal-dir"); dir != "" {
			var eng *storage.JournaledStorage
			eng, snap, err = wireStorage(dir)
			if err != nil {
				return fmt.Errorf("failed to wire durable storage: %w", err)
			}
			if err := eng.Recover(); err != nil {
				return fmt.Errorf("failed to recover storage from journal: %w", err)
			}
			logrus.Infof("durable storage wired at %s", dir)
		}

		prof, err := runProfiler(ctx)
		if err != nil {
			return err
		}

		exitChan := make(chan os.Signal, 1)
		signal.Notify(exitChan, syscall.SIGINT, syscall.SIGTERM)
		done := make(chan struct{})
		go func() {
			select {
			case s := <-exitChan:
				logrus.Warnf("pandagen-kernel caught signal: %s", s)
				systemd.SdNotify(false, systemd.SdNotifyStopping)
				if prof != nil {
					prof.Stop()
				}
				os.Exit(0)
			case <-done:
			}
		}()

		systemd.SdNotify(false, systemd.SdNotifyReady)

		replay(k, steps)

		if snap != nil {
			snap.Close()
		}
		if prof != nil {
			prof.Stop()
		}
		close(done)

		logrus.Infof("audit trail: %d syscall events recorded", k.Gate.AuditLog().Len())
		logrus.Info("done.")
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func wireStorage(dir string) (*storage.JournaledStorage, *storage.Snapshotter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, err
	}
	journal := storage.NewJournal(afero.NewOsFs(), dir+"/journal.log")
	eng := storage.NewJournaledStorage(journal)

	snap, err := storage.OpenSnapshotter(dir + "/snapshot.db")
	if err != nil {
		return nil, nil, err
	}
	eng.UseSnapshotter(snap)
	return eng, snap, nil
}
