package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

// defaultBackendPort is used when the caller does not override it via
// NewDockerDriver's port argument.
const defaultBackendPort = 25565

// preferredNetwork is tried first when a container is attached to more than
// one Docker network.
const preferredNetwork = "bridge"

// DockerDriver is the default Driver, grounded on original_source's
// server/docker.rs: it drives a single named container through the Docker
// engine API and caches its discovered address across start cycles.
type DockerDriver struct {
	cli           *client.Client
	containerName string
	port          int
	logger        *slog.Logger

	mu   sync.Mutex
	addr HostInfo
	have bool
}

// NewDockerDriver connects to the local Docker engine and validates that
// containerName exists, failing fast per spec.md's ConfigInvalid-at-boot
// rule. port is the Minecraft server port inside the container (spec.md
// §6's backend_port, default 25565); a zero value falls back to the default.
func NewDockerDriver(ctx context.Context, containerName string, port int, logger *slog.Logger) (*DockerDriver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if port == 0 {
		port = defaultBackendPort
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, wrapErr("connect", err)
	}

	d := &DockerDriver{cli: cli, containerName: containerName, port: port, logger: logger}
	if _, err := cli.ContainerInspect(ctx, containerName); err != nil {
		return nil, wrapErr(fmt.Sprintf("inspect %q", containerName), err)
	}
	return d, nil
}

func (d *DockerDriver) Start(ctx context.Context) error {
	d.logger.Info("starting backend container", "container", d.containerName)
	if err := d.cli.ContainerStart(ctx, d.containerName, container.StartOptions{}); err != nil {
		return wrapErr("start", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.have {
		return nil
	}
	info, err := d.discoverAddr(ctx)
	if err != nil {
		return err
	}
	d.addr = info
	d.have = true
	return nil
}

func (d *DockerDriver) Stop(ctx context.Context) error {
	d.logger.Info("stopping backend container", "container", d.containerName)
	if err := d.cli.ContainerStop(ctx, d.containerName, container.StopOptions{}); err != nil {
		return wrapErr("stop", err)
	}
	return nil
}

func (d *DockerDriver) Addr() (HostInfo, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addr, d.have
}

func (d *DockerDriver) discoverAddr(ctx context.Context) (HostInfo, error) {
	info, err := d.cli.ContainerInspect(ctx, d.containerName)
	if err != nil {
		return HostInfo{}, wrapErr("inspect", err)
	}
	if info.NetworkSettings == nil || len(info.NetworkSettings.Networks) == 0 {
		return HostInfo{}, wrapErr("discover address", fmt.Errorf("container %q has no networks", d.containerName))
	}

	var ip string
	if bridge, ok := info.NetworkSettings.Networks[preferredNetwork]; ok && bridge.IPAddress != "" {
		ip = bridge.IPAddress
		d.logger.Info("using bridge ip address", "ip", ip)
	} else {
		for name, net := range info.NetworkSettings.Networks {
			if net.IPAddress == "" {
				continue
			}
			ip = net.IPAddress
			d.logger.Info("found ip address on non-default network", "ip", ip, "network", name)
			break
		}
	}
	if ip == "" {
		return HostInfo{}, wrapErr("discover address", fmt.Errorf("container %q has no assigned ip", d.containerName))
	}

	return HostInfo{
		Host: d.containerName,
		Addr: fmt.Sprintf("%s:%d", ip, d.port),
	}, nil
}
