package restore

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"golang.org/x/sync/errgroup"

	log "m2b4a/pkg/log"
)

const (
	// DefaultImage ships a restore executable compatible with the platform's
	// databases.
	DefaultImage = "mongo:4.4"

	containerDumpPath = "/dump"
)

// DockerAPI is the subset of the Docker Engine client the container runner
// uses.
type DockerAPI interface {
	ImagePull(ctx context.Context, ref string, options image.PullOptions) (io.ReadCloser, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig,
		networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
}

// ContainerRunner runs the restore inside a throwaway container with the
// dump directory mounted read-only. It serves hosts without a bundled
// restore executable.
type ContainerRunner struct {
	docker DockerAPI
	image  string
}

// NewContainerRunner returns a runner using the given Docker client.
func NewContainerRunner(docker DockerAPI, imageRef string) *ContainerRunner {
	if imageRef == "" {
		imageRef = DefaultImage
	}
	return &ContainerRunner{docker: docker, image: imageRef}
}

// NewDockerClient connects to the Docker daemon configured in the
// environment.
func NewDockerClient() (*client.Client, error) {
	c, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return c, nil
}

// Run implements Runner.
func (r *ContainerRunner) Run(ctx context.Context, job Job, out OutputFunc) (int, error) {
	out = serialize(out)
	launchErr := func(err error) (int, error) {
		return -1, &LaunchError{Binary: r.image, Err: err}
	}

	if err := r.pull(ctx); err != nil {
		return launchErr(err)
	}

	inner := job.withDumpPath(containerDumpPath)
	created, err := r.docker.ContainerCreate(ctx,
		&container.Config{
			Image:        r.image,
			Cmd:          append([]string{DefaultBinaryName}, inner.Args...),
			AttachStdout: true,
			AttachStderr: true,
		},
		&container.HostConfig{
			Binds:       []string{job.DumpPath + ":" + containerDumpPath + ":ro"},
			NetworkMode: "host",
		},
		nil, nil, "")
	if err != nil {
		return launchErr(fmt.Errorf("failed to create restore container: %w", err))
	}
	defer func() {
		// The run context may already be cancelled; the container must go anyway.
		rmCtx := context.WithoutCancel(ctx)
		if err := r.docker.ContainerRemove(rmCtx, created.ID, container.RemoveOptions{Force: true}); err != nil {
			log.Warn("Failed to remove restore container", "container_id", created.ID, "error", err)
		}
	}()

	// Subscribe before starting so a fast exit is not missed.
	waitCh, errCh := r.docker.ContainerWait(ctx, created.ID, container.WaitConditionNextExit)

	log.Debug("Starting restore container", "container_id", created.ID, "image", r.image, "command", inner.CommandLine())
	if err := r.docker.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return launchErr(fmt.Errorf("failed to start restore container: %w", err))
	}

	logs, err := r.docker.ContainerLogs(ctx, created.ID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return launchErr(fmt.Errorf("failed to attach to restore output: %w", err))
	}
	defer logs.Close()

	if err := demux(logs, out); err != nil {
		log.Warn("Restore output was not fully readable", "error", err)
	}

	select {
	case res := <-waitCh:
		if res.Error != nil && res.Error.Message != "" {
			return launchErr(fmt.Errorf("restore container failed: %s", res.Error.Message))
		}
		return int(res.StatusCode), nil
	case err := <-errCh:
		return launchErr(fmt.Errorf("waiting for restore container: %w", err))
	case <-ctx.Done():
		return -1, nil
	}
}

func (r *ContainerRunner) pull(ctx context.Context) error {
	log.Info("Pulling restore image", "image", r.image)
	rc, err := r.docker.ImagePull(ctx, r.image, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", r.image, err)
	}
	defer rc.Close()
	if _, err := io.Copy(io.Discard, rc); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", r.image, err)
	}
	return nil
}

// demux splits the multiplexed log stream and drains both halves
// concurrently.
func demux(logs io.Reader, out OutputFunc) error {
	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()

	var g errgroup.Group
	g.Go(func() error {
		_, err := stdcopy.StdCopy(stdoutW, stderrW, logs)
		stdoutW.CloseWithError(err)
		stderrW.CloseWithError(err)
		return err
	})
	g.Go(func() error { return drain(stdoutR, Stdout, out) })
	g.Go(func() error { return drain(stderrR, Stderr, out) })
	return g.Wait()
}
