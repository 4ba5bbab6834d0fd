// Package azdo wraps the Azure DevOps REST clients behind one facade with
// shared connection state, lazy per-area clients, and default-project
// resolution.
package azdo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/pipelines"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/release"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/test"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"

	"azdo-cli/internal/config"
)

// ConfigurationError marks failures caused by missing or inconsistent
// local settings rather than by the upstream service.
type ConfigurationError struct {
	msg string
}

func (e *ConfigurationError) Error() string {
	return e.msg
}

// Client is the facade handlers talk to. Per-area REST clients are
// created on first use and cached; creating the facade itself performs no
// network traffic.
type Client struct {
	cfg  *config.Config
	conn *azuredevops.Connection

	mu        sync.Mutex
	core      core.Client
	git       git.Client
	wit       workitemtracking.Client
	build     build.Client
	release   release.Client
	pipelines pipelines.Client
	test      test.Client
}

// New builds the facade from configuration, validating that the server
// URL, collection, and token are all present.
func New(cfg *config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigurationError{msg: err.Error()}
	}
	conn := azuredevops.NewPatConnection(cfg.OrganizationURL(), cfg.PAT)
	if cfg.RequestTimeout > 0 {
		conn.Timeout = &cfg.RequestTimeout
	}
	return &Client{cfg: cfg, conn: conn}, nil
}

// OrganizationURL returns the base URL the facade connects to.
func (c *Client) OrganizationURL() string {
	return c.cfg.OrganizationURL()
}

// DefaultProject returns the configured fallback project, if any.
func (c *Client) DefaultProject() string {
	return c.cfg.Project
}

// RequireProject resolves the project for a call: the explicit argument
// wins, then the configured default. An empty result is a configuration
// problem, not an upstream one.
func (c *Client) RequireProject(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if c.cfg.Project != "" {
		return c.cfg.Project, nil
	}
	return "", &ConfigurationError{msg: "Project is required: pass the project argument or set AZDO_PROJECT"}
}

// Core returns the project and team client.
func (c *Client) Core(ctx context.Context) (core.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.core == nil {
		cl, err := core.NewClient(ctx, c.conn)
		if err != nil {
			return nil, fmt.Errorf("connecting core client: %w", err)
		}
		c.core = cl
	}
	return c.core, nil
}

// Git returns the repository client.
func (c *Client) Git(ctx context.Context) (git.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.git == nil {
		cl, err := git.NewClient(ctx, c.conn)
		if err != nil {
			return nil, fmt.Errorf("connecting git client: %w", err)
		}
		c.git = cl
	}
	return c.git, nil
}

// WorkItems returns the work item tracking client.
func (c *Client) WorkItems(ctx context.Context) (workitemtracking.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wit == nil {
		cl, err := workitemtracking.NewClient(ctx, c.conn)
		if err != nil {
			return nil, fmt.Errorf("connecting work item client: %w", err)
		}
		c.wit = cl
	}
	return c.wit, nil
}

// Builds returns the build client.
func (c *Client) Builds(ctx context.Context) (build.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.build == nil {
		cl, err := build.NewClient(ctx, c.conn)
		if err != nil {
			return nil, fmt.Errorf("connecting build client: %w", err)
		}
		c.build = cl
	}
	return c.build, nil
}

// Releases returns the release client.
func (c *Client) Releases(ctx context.Context) (release.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.release == nil {
		cl, err := release.NewClient(ctx, c.conn)
		if err != nil {
			return nil, fmt.Errorf("connecting release client: %w", err)
		}
		c.release = cl
	}
	return c.release, nil
}

// Pipelines returns the pipelines client. Unlike the other areas this
// client constructor cannot fail.
func (c *Client) Pipelines(ctx context.Context) pipelines.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pipelines == nil {
		c.pipelines = pipelines.NewClient(ctx, c.conn)
	}
	return c.pipelines
}

// Tests returns the test results client.
func (c *Client) Tests(ctx context.Context) (test.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.test == nil {
		cl, err := test.NewClient(ctx, c.conn)
		if err != nil {
			return nil, fmt.Errorf("connecting test client: %w", err)
		}
		c.test = cl
	}
	return c.test, nil
}

// IsNotFound reports whether err is an upstream 404, which the handlers
// surface with friendlier messages than the raw wire error.
func IsNotFound(err error) bool {
	var wrapped azuredevops.WrappedError
	if errors.As(err, &wrapped) {
		return wrapped.StatusCode != nil && *wrapped.StatusCode == http.StatusNotFound
	}
	return false
}
