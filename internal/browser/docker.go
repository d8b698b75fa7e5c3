package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

const chromeImage = "browserless/chrome:latest"

// DockerLauncher runs every session in its own browserless Chrome container
type DockerLauncher struct {
	client *client.Client
	opts   LaunchOptions
}

// NewDockerLauncher creates a launcher backed by the local Docker daemon
func NewDockerLauncher(opts LaunchOptions) (*DockerLauncher, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	return &DockerLauncher{
		client: cli,
		opts:   opts,
	}, nil
}

func (d *DockerLauncher) Name() string {
	return "docker"
}

// Launch starts a container, waits for its CDP endpoint and opens a page in it
func (d *DockerLauncher) Launch(ctx context.Context, sessionID string) (Session, error) {
	containerConfig := &container.Config{
		Image: chromeImage,
		Labels: map[string]string{
			"session-id": sessionID,
			"managed-by": "replybot",
		},
		Env: []string{
			"CONNECTION_TIMEOUT=-1",        // Disable connection timeout
			"MAX_CONCURRENT_SESSIONS=1",    // Only allow 1 session per container
			"PREBOOT_CHROME=true",          // Pre-boot Chrome for faster startup
			"EXIT_ON_HEALTH_FAILURE=false", // Don't exit on health check failures
		},
		ExposedPorts: nat.PortSet{
			"3000/tcp": struct{}{},
		},
	}

	hostConfig := &container.HostConfig{
		PortBindings: nat.PortMap{
			"3000/tcp": []nat.PortBinding{
				{
					HostIP:   "127.0.0.1",
					HostPort: "0",
				},
			},
		},
	}

	resp, err := d.client.ContainerCreate(
		ctx,
		containerConfig,
		hostConfig,
		nil,
		nil,
		fmt.Sprintf("replybot-%s", sessionID[:8]),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	if err := d.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		d.stop(resp.ID)
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	inspect, err := d.client.ContainerInspect(ctx, resp.ID)
	if err != nil {
		d.stop(resp.ID)
		return nil, fmt.Errorf("failed to inspect container: %w", err)
	}

	bindings := inspect.NetworkSettings.Ports["3000/tcp"]
	if len(bindings) == 0 {
		d.stop(resp.ID)
		return nil, fmt.Errorf("container %s exposes no CDP port", resp.ID[:12])
	}
	port := bindings[0].HostPort

	if err := d.waitForBrowserReady(ctx, port); err != nil {
		d.stop(resp.ID)
		return nil, fmt.Errorf("browser failed to become ready: %w", err)
	}

	controlURL := fmt.Sprintf("ws://localhost:%s", port)
	b, page, err := openPage(ctx, controlURL, d.opts)
	if err != nil {
		d.stop(resp.ID)
		return nil, err
	}

	containerID := resp.ID
	return &rodSession{
		browser:     b,
		page:        newRodPage(page),
		connectURL:  controlURL,
		containerID: containerID,
		release: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return d.StopBrowser(ctx, containerID)
		},
	}, nil
}

// StopBrowser stops and removes a session container
func (d *DockerLauncher) StopBrowser(ctx context.Context, containerID string) error {
	timeout := 10
	stopOptions := container.StopOptions{
		Timeout: &timeout,
	}

	if err := d.client.ContainerStop(ctx, containerID, stopOptions); err != nil {
		return fmt.Errorf("failed to stop container: %w", err)
	}

	if err := d.client.ContainerRemove(ctx, containerID, container.RemoveOptions{}); err != nil {
		return fmt.Errorf("failed to remove container: %w", err)
	}

	return nil
}

func (d *DockerLauncher) stop(containerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = d.StopBrowser(ctx, containerID)
}

// EnsureImage pulls the Chrome image when it is not present locally
func (d *DockerLauncher) EnsureImage(ctx context.Context) error {
	images, err := d.client.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == chromeImage {
				return nil
			}
		}
	}

	reader, err := d.client.ImagePull(ctx, chromeImage, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image: %w", err)
	}
	defer reader.Close()

	_, err = io.Copy(io.Discard, reader)
	return err
}

func (d *DockerLauncher) Close() error {
	return d.client.Close()
}

// waitForBrowserReady polls the /json/version endpoint until Chrome answers
func (d *DockerLauncher) waitForBrowserReady(ctx context.Context, port string) error {
	url := fmt.Sprintf("http://localhost:%s/json/version", port)
	maxRetries := 20 // 10 seconds total (20 * 500ms)

	for i := 0; i < maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				// WebSocket needs a moment after the HTTP endpoint is up
				time.Sleep(500 * time.Millisecond)
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}

	return fmt.Errorf("browser did not become ready after %d retries", maxRetries)
}
